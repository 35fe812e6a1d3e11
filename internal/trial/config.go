// Package trial implements the reaction-trial engine: wrist speed
// estimation, idle-noise calibration, and the phase state machine that
// times how quickly a subject punches after a randomly delayed go cue.
package trial

import "time"

// Config holds the tuning constants for a trial run. Speeds are in
// normalized image units per second (the coordinate space of the pose
// detector), not physical units.
type Config struct {
	// Alpha is the exponential smoothing factor for wrist speed, in (0,1].
	Alpha float64

	// MinDisplacement is the dead zone: per-frame wrist displacements
	// below this are treated as zero before smoothing, suppressing
	// landmark jitter. Zero disables the dead zone.
	MinDisplacement float64

	// NoiseSamples is the number of CALM-phase frames used to measure the
	// idle noise floor (roughly one second of frames).
	NoiseSamples int

	// StartFactor scales the noise floor into the movement-onset threshold.
	StartFactor float64

	// MinStartVel is the floor for the onset threshold, so a very still
	// subject cannot produce a hair-trigger.
	MinStartVel float64

	// ConsecFrames is how many consecutive above-threshold frames are
	// required before movement onset is accepted.
	ConsecFrames int

	// MovingWindow is how long peak speed is tracked after onset.
	MovingWindow time.Duration

	// ResultHold is how long the result stays up before the next trial.
	ResultHold time.Duration

	// WaitMin and WaitMax bound the random delay before the go cue.
	// The delay is drawn from [WaitMin, WaitMax).
	WaitMin time.Duration
	WaitMax time.Duration
}

// DefaultConfig returns the tuning used for a webcam at ~30 FPS.
func DefaultConfig() Config {
	return Config{
		Alpha:           0.35,
		MinDisplacement: 0.003,
		NoiseSamples:    30,
		StartFactor:     3.0,
		MinStartVel:     0.03,
		ConsecFrames:    2,
		MovingWindow:    1000 * time.Millisecond,
		ResultHold:      3000 * time.Millisecond,
		WaitMin:         2000 * time.Millisecond,
		WaitMax:         4000 * time.Millisecond,
	}
}
