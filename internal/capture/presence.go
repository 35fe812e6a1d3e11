package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Presence detection constants.
const (
	// presenceBlurSize is the kernel size for Gaussian blur before differencing.
	presenceBlurSize = 21
	// presenceDiffThreshold is the binary threshold for per-pixel differences.
	presenceDiffThreshold = 25
)

// PresenceDetector decides whether a subject is active in front of the
// camera by frame differencing. The pipeline uses it to keep the pose
// subprocess and the trial engine idle while nobody is training.
type PresenceDetector struct {
	minChange float64
	prevGray  gocv.Mat
	primed    bool
	mu        sync.Mutex
}

// NewPresenceDetector creates a PresenceDetector. minChange is the
// percentage of pixels that must differ between consecutive frames for the
// frame to count as activity (e.g. 1.0 means 1%).
func NewPresenceDetector(minChange float64) *PresenceDetector {
	return &PresenceDetector{
		minChange: minChange,
		prevGray:  gocv.NewMat(),
	}
}

// Observe compares the frame against the previous one and reports whether
// activity was seen, along with the percentage of changed pixels.
//
// The frame is grayscaled and blurred before differencing so sensor noise
// does not read as presence. The first frame primes the baseline and
// reports no activity.
func (d *PresenceDetector) Observe(frame *gocv.Mat) (active bool, changePercent float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: presenceBlurSize, Y: presenceBlurSize}, 0, 0, gocv.BorderDefault)

	if !d.primed {
		blurred.CopyTo(&d.prevGray)
		d.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, d.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, presenceDiffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()
	changePercent = float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&d.prevGray)

	return changePercent > d.minChange, changePercent
}

// SetMinChange sets the activity threshold percentage.
// Values less than or equal to 0 are ignored.
func (d *PresenceDetector) SetMinChange(minChange float64) {
	if minChange <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.minChange = minChange
}

// Reset clears the baseline so the next frame primes a fresh one.
func (d *PresenceDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.prevGray.Empty() {
		d.prevGray.Close()
		d.prevGray = gocv.NewMat()
	}
	d.primed = false
}

// Close releases resources used by the detector.
func (d *PresenceDetector) Close() {
	d.Reset()
}
