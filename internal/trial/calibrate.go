package trial

// NoiseCalibrator measures the subject's idle-motion noise floor during the
// CALM phase. It accumulates per-frame speed samples and, once the buffer is
// full, reports their arithmetic mean as the noise level.
type NoiseCalibrator struct {
	size    int
	samples []float64
}

// NewNoiseCalibrator creates a calibrator that completes after size samples.
func NewNoiseCalibrator(size int) *NoiseCalibrator {
	if size < 1 {
		size = 1
	}
	return &NoiseCalibrator{
		size:    size,
		samples: make([]float64, 0, size),
	}
}

// Add accumulates one speed sample. When the buffer reaches the configured
// size it returns the mean as the noise level, clears the buffer, and
// reports done = true. Until then level is zero.
func (c *NoiseCalibrator) Add(speed float64) (level float64, done bool) {
	c.samples = append(c.samples, speed)
	if len(c.samples) < c.size {
		return 0, false
	}

	var sum float64
	for _, s := range c.samples {
		sum += s
	}
	level = sum / float64(len(c.samples))

	c.samples = c.samples[:0]
	return level, true
}

// Count returns the number of samples accumulated so far.
func (c *NoiseCalibrator) Count() int {
	return len(c.samples)
}

// Reset discards any accumulated samples.
func (c *NoiseCalibrator) Reset() {
	c.samples = c.samples[:0]
}
