package detector

import (
	"errors"
	"math"
	"testing"
)

func TestPoint3D_Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point3D
		want float64
	}{
		{
			name: "same point",
			a:    Point3D{X: 0.5, Y: 0.5, Z: 0.1},
			b:    Point3D{X: 0.5, Y: 0.5, Z: 0.1},
			want: 0,
		},
		{
			name: "unit distance along x",
			a:    Point3D{X: 0, Y: 0, Z: 0},
			b:    Point3D{X: 1, Y: 0, Z: 0},
			want: 1,
		},
		{
			name: "3-4-5 triangle in xy",
			a:    Point3D{X: 0, Y: 0, Z: 0},
			b:    Point3D{X: 0.3, Y: 0.4, Z: 0},
			want: 0.5,
		},
		{
			name: "depth contributes",
			a:    Point3D{X: 0, Y: 0, Z: 0},
			b:    Point3D{X: 0, Y: 0, Z: -0.25},
			want: 0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Distance(tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestJSONPose_ToPoseLandmarks(t *testing.T) {
	jp := jsonPose{
		Score: 0.87,
		Points: []jsonPoint{
			{X: 0.1, Y: 0.2, Z: 0.3},
			{X: 0.4, Y: 0.5, Z: 0.6},
		},
	}

	pose := jp.toPoseLandmarks()

	if pose.Score != 0.87 {
		t.Errorf("Score = %f, want 0.87", pose.Score)
	}
	if pose.Points[0] != (Point3D{X: 0.1, Y: 0.2, Z: 0.3}) {
		t.Errorf("Points[0] = %v", pose.Points[0])
	}
	if pose.Points[1] != (Point3D{X: 0.4, Y: 0.5, Z: 0.6}) {
		t.Errorf("Points[1] = %v", pose.Points[1])
	}
	// Missing points stay zero
	if pose.Points[2] != (Point3D{}) {
		t.Errorf("Points[2] = %v, want zero value", pose.Points[2])
	}
}

func TestJSONPose_ToPoseLandmarks_TruncatesExtraPoints(t *testing.T) {
	points := make([]jsonPoint, NumLandmarks+5)
	for i := range points {
		points[i] = jsonPoint{X: float64(i)}
	}

	pose := jsonPose{Points: points}.toPoseLandmarks()

	if pose.Points[NumLandmarks-1].X != float64(NumLandmarks-1) {
		t.Errorf("last landmark X = %f, want %f", pose.Points[NumLandmarks-1].X, float64(NumLandmarks-1))
	}
}

func TestMockDetector_FixedPose(t *testing.T) {
	m := NewMockDetector()

	pose, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if pose != nil {
		t.Error("expected nil pose before SetPose")
	}

	guard := GuardPoseLandmarks()
	m.SetPose(guard)

	pose, err = m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if pose != guard {
		t.Error("expected the configured pose")
	}
}

func TestMockDetector_Sequence(t *testing.T) {
	m := NewMockDetector()

	guard := GuardPoseLandmarks()
	jab := JabPoseLandmarks()
	m.SetSequence([]*PoseLandmarks{guard, nil, jab})

	want := []*PoseLandmarks{guard, nil, jab, jab, jab}
	for i, w := range want {
		pose, err := m.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() #%d error = %v", i, err)
		}
		if pose != w {
			t.Errorf("Detect() #%d = %v, want %v", i, pose, w)
		}
	}
}

func TestMockDetector_Error(t *testing.T) {
	m := NewMockDetector()
	wantErr := errors.New("boom")
	m.SetError(wantErr)

	if _, err := m.Detect(nil); !errors.Is(err, wantErr) {
		t.Errorf("Detect() error = %v, want %v", err, wantErr)
	}
}

func TestShiftedPose(t *testing.T) {
	guard := GuardPoseLandmarks()
	shifted := ShiftedPose(guard, 0.1, -0.05, 0.02)

	if shifted.Points[LeftWrist].X != guard.Points[LeftWrist].X+0.1 {
		t.Error("left wrist X not shifted")
	}
	if shifted.Points[RightWrist].Y != guard.Points[RightWrist].Y-0.05 {
		t.Error("right wrist Y not shifted")
	}
	// Non-wrist landmarks are untouched
	if shifted.Points[Nose] != guard.Points[Nose] {
		t.Error("nose should not move")
	}
	// Original is untouched
	if guard.Points[LeftWrist] != GuardPoseLandmarks().Points[LeftWrist] {
		t.Error("original pose mutated")
	}
}

func TestShiftedPose_Nil(t *testing.T) {
	if ShiftedPose(nil, 1, 1, 1) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestWristAccessors(t *testing.T) {
	pose := GuardPoseLandmarks()

	if pose.LeftWristPoint() != pose.Points[LeftWrist] {
		t.Error("LeftWristPoint mismatch")
	}
	if pose.RightWristPoint() != pose.Points[RightWrist] {
		t.Error("RightWristPoint mismatch")
	}
}
