package trial

import "github.com/ayusman/jab/internal/detector"

// SpeedFilter converts consecutive positions of one tracked point into an
// exponentially smoothed instantaneous speed.
type SpeedFilter struct {
	alpha           float64
	minDisplacement float64
	prev            detector.Point3D
	hasPrev         bool
	smoothed        float64
}

// NewSpeedFilter creates a SpeedFilter with the given smoothing factor and
// dead-zone displacement.
func NewSpeedFilter(alpha, minDisplacement float64) *SpeedFilter {
	return &SpeedFilter{
		alpha:           alpha,
		minDisplacement: minDisplacement,
	}
}

// Update feeds the point position for one frame and returns the smoothed
// speed. dt is the time since the previous processed frame in seconds.
//
// On the first sample, or when dt is not positive (duplicate or backwards
// timestamp), no motion is inferred: the position is stored and the speed
// reported is zero.
func (f *SpeedFilter) Update(p detector.Point3D, dt float64) float64 {
	if !f.hasPrev || dt <= 0 {
		f.prev = p
		f.hasPrev = true
		f.smoothed = 0
		return 0
	}

	dist := p.Distance(f.prev)
	if dist < f.minDisplacement {
		dist = 0
	}

	raw := dist / dt
	f.smoothed = f.alpha*raw + (1-f.alpha)*f.smoothed
	f.prev = p

	return f.smoothed
}

// Speed returns the last smoothed speed without consuming a sample.
func (f *SpeedFilter) Speed() float64 {
	return f.smoothed
}

// Reset clears the filter so the next sample is treated as the first.
func (f *SpeedFilter) Reset() {
	f.hasPrev = false
	f.smoothed = 0
}
