package trial

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ayusman/jab/internal/detector"
)

// Engine is the frame-driven front of the trial core. It owns one speed
// filter per wrist, the frame clock, and the state machine, and feeds the
// machine the max-of-wrists speed each frame.
type Engine struct {
	mu        sync.RWMutex
	cfg       Config
	left      *SpeedFilter
	right     *SpeedFilter
	machine   *Machine
	lastFrame time.Time
	hasFrame  bool
	speed     float64
}

// NewEngine creates an Engine with the given tuning. src seeds the random
// inter-trial delay; pass nil for a time-seeded source.
func NewEngine(cfg Config, src rand.Source) *Engine {
	return &Engine{
		cfg:     cfg,
		left:    NewSpeedFilter(cfg.Alpha, cfg.MinDisplacement),
		right:   NewSpeedFilter(cfg.Alpha, cfg.MinDisplacement),
		machine: NewMachine(cfg, src),
	}
}

// Feed runs one update pass for a captured frame. A nil pose (no subject
// detected) skips the update entirely: no phase change, no smoothing
// update, and the next frame's dt spans the gap.
func (e *Engine) Feed(pose *detector.PoseLandmarks, now time.Time) {
	if pose == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var dt float64
	if e.hasFrame {
		dt = now.Sub(e.lastFrame).Seconds()
	}
	e.lastFrame = now
	e.hasFrame = true

	l := e.left.Update(pose.LeftWristPoint(), dt)
	r := e.right.Update(pose.RightWristPoint(), dt)
	e.speed = math.Max(l, r)

	e.machine.Update(e.speed, now)
}

// Snapshot returns the current phase and trial metrics.
func (e *Engine) Snapshot() Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.machine.Snapshot()
}

// Phase returns the currently active phase.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.machine.Phase()
}

// Speed returns the last max-of-wrists smoothed speed.
func (e *Engine) Speed() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.speed
}

// Config returns the engine's tuning.
func (e *Engine) Config() Config {
	return e.cfg
}

// Recalibrate discards the smoothing history and restarts the machine from
// INIT, forcing a fresh noise calibration.
func (e *Engine) Recalibrate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.left.Reset()
	e.right.Reset()
	e.hasFrame = false
	e.speed = 0
	e.machine.Reset()
}
