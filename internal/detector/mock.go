package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns a scripted sequence of poses, or a fixed pose when no
// sequence is set.
type MockDetector struct {
	pose     *PoseLandmarks
	sequence []*PoseLandmarks
	index    int
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose that will be returned by every Detect call.
// A nil pose simulates an empty frame.
func (m *MockDetector) SetPose(pose *PoseLandmarks) {
	m.pose = pose
	m.sequence = nil
	m.index = 0
}

// SetSequence sets a per-frame pose sequence. Once exhausted, Detect
// keeps returning the last entry. Nil entries simulate empty frames.
func (m *MockDetector) SetSequence(poses []*PoseLandmarks) {
	m.sequence = poses
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*PoseLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}

	if m.sequence != nil {
		if m.index >= len(m.sequence) {
			return m.sequence[len(m.sequence)-1], nil
		}
		pose := m.sequence[m.index]
		m.index++
		return pose, nil
	}

	return m.pose, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// GuardPoseLandmarks returns a preset pose of a subject standing in a
// boxing guard, wrists held in front of the chin.
func GuardPoseLandmarks() *PoseLandmarks {
	pose := &PoseLandmarks{Score: 0.95}

	pose.Points[Nose] = Point3D{X: 0.50, Y: 0.20, Z: -0.05}
	pose.Points[LeftShoulder] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}
	pose.Points[RightShoulder] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}
	pose.Points[LeftElbow] = Point3D{X: 0.60, Y: 0.45, Z: -0.05}
	pose.Points[RightElbow] = Point3D{X: 0.40, Y: 0.45, Z: -0.05}
	pose.Points[LeftWrist] = Point3D{X: 0.55, Y: 0.30, Z: -0.15}
	pose.Points[RightWrist] = Point3D{X: 0.45, Y: 0.30, Z: -0.15}
	pose.Points[LeftHip] = Point3D{X: 0.56, Y: 0.60, Z: 0.0}
	pose.Points[RightHip] = Point3D{X: 0.44, Y: 0.60, Z: 0.0}

	return pose
}

// JabPoseLandmarks returns a preset pose with the right arm fully
// extended toward the camera, as at the end of a straight punch.
func JabPoseLandmarks() *PoseLandmarks {
	pose := GuardPoseLandmarks()

	pose.Points[RightElbow] = Point3D{X: 0.44, Y: 0.32, Z: -0.30}
	pose.Points[RightWrist] = Point3D{X: 0.46, Y: 0.28, Z: -0.55}
	pose.Points[RightIndex] = Point3D{X: 0.46, Y: 0.27, Z: -0.60}

	return pose
}

// ShiftedPose returns a copy of pose with both wrists displaced by
// (dx, dy, dz). Useful for synthesizing motion between frames.
func ShiftedPose(pose *PoseLandmarks, dx, dy, dz float64) *PoseLandmarks {
	if pose == nil {
		return nil
	}

	shifted := *pose
	for _, idx := range []int{LeftWrist, RightWrist} {
		shifted.Points[idx].X += dx
		shifted.Points[idx].Y += dy
		shifted.Points[idx].Z += dz
	}

	return &shifted
}
