package trial

import (
	"math/rand"
	"time"
)

// Phase identifies where the state machine is in a trial.
type Phase int

const (
	// PhaseInit is the transient startup phase before calibration.
	PhaseInit Phase = iota
	// PhaseCalm measures the subject's idle noise floor.
	PhaseCalm
	// PhaseWait is the random hold before the go cue.
	PhaseWait
	// PhaseSignal shows the go cue and watches for movement onset.
	PhaseSignal
	// PhaseMoving tracks peak speed after onset.
	PhaseMoving
	// PhaseResult displays the finished trial before looping back.
	PhaseResult
)

// String returns the phase name as shown to the UI.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseCalm:
		return "calm"
	case PhaseWait:
		return "wait"
	case PhaseSignal:
		return "signal"
	case PhaseMoving:
		return "moving"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}

// Trial accumulates the measurements of one reaction trial. It is reset at
// the start of every CALM phase; Reaction is set exactly once, at the
// SIGNAL to MOVING transition.
type Trial struct {
	SignalAt   time.Time
	OnsetAt    time.Time
	Reaction   time.Duration
	PeakSpeed  float64
	NoiseLevel float64
}

// phaseState is the closed set of per-phase payloads. Each phase carries
// only the fields that are meaningful while it is active, so stale values
// cannot leak across transitions.
type phaseState interface {
	phase() Phase
}

type initState struct{}

type calmState struct {
	noise *NoiseCalibrator
}

type waitState struct {
	noiseLevel float64
	start      time.Time
	delay      time.Duration
}

type signalState struct {
	noiseLevel float64
	signalAt   time.Time
	run        int // consecutive above-threshold frames
}

type movingState struct {
	trial Trial
}

type resultState struct {
	trial Trial
}

func (initState) phase() Phase   { return PhaseInit }
func (calmState) phase() Phase   { return PhaseCalm }
func (waitState) phase() Phase   { return PhaseWait }
func (signalState) phase() Phase { return PhaseSignal }
func (movingState) phase() Phase { return PhaseMoving }
func (resultState) phase() Phase { return PhaseResult }

// Machine drives a trial through its phases, consuming one speed sample per
// frame. It is not safe for concurrent use; the Engine serializes access.
type Machine struct {
	cfg   Config
	rng   *rand.Rand
	state phaseState
}

// NewMachine creates a Machine in the INIT phase. src seeds the random
// inter-trial delay; pass nil for a time-seeded source.
func NewMachine(cfg Config, src rand.Source) *Machine {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Machine{
		cfg:   cfg,
		rng:   rand.New(src),
		state: initState{},
	}
}

// Update runs one state-machine step for the frame's speed sample. now must
// come from a monotonic clock; all phase durations are computed as
// differences of the timestamps passed here.
func (m *Machine) Update(speed float64, now time.Time) {
	m.state = m.advance(m.state, speed, now)
}

// Phase returns the currently active phase.
func (m *Machine) Phase() Phase {
	return m.state.phase()
}

// Reset puts the machine back into INIT, discarding any calibration and
// trial in progress.
func (m *Machine) Reset() {
	m.state = initState{}
}

// advance computes the successor state for one frame. It mutates nothing on
// the machine besides the calibration buffer owned by the CALM state, which
// makes the transition logic testable frame by frame.
func (m *Machine) advance(s phaseState, speed float64, now time.Time) phaseState {
	switch st := s.(type) {
	case initState:
		// INIT is transient: fall through so the frame still counts
		// toward calibration.
		return m.advance(calmState{noise: NewNoiseCalibrator(m.cfg.NoiseSamples)}, speed, now)

	case calmState:
		level, done := st.noise.Add(speed)
		if !done {
			return st
		}
		return waitState{
			noiseLevel: level,
			start:      now,
			delay:      m.waitDelay(),
		}

	case waitState:
		if now.Sub(st.start) < st.delay {
			return st
		}
		return signalState{
			noiseLevel: st.noiseLevel,
			signalAt:   now,
		}

	case signalState:
		if speed > m.onsetThreshold(st.noiseLevel) {
			st.run++
		} else {
			st.run = 0
		}
		if st.run < m.cfg.ConsecFrames {
			return st
		}
		return movingState{trial: Trial{
			SignalAt:   st.signalAt,
			OnsetAt:    now,
			Reaction:   now.Sub(st.signalAt),
			NoiseLevel: st.noiseLevel,
		}}

	case movingState:
		if speed > st.trial.PeakSpeed {
			st.trial.PeakSpeed = speed
		}
		if now.Sub(st.trial.OnsetAt) > m.cfg.MovingWindow {
			return resultState{trial: st.trial}
		}
		return st

	case resultState:
		if now.Sub(st.trial.OnsetAt) > m.cfg.ResultHold {
			return m.advance(initState{}, speed, now)
		}
		return st
	}

	return s
}

// onsetThreshold is the adaptive movement threshold: a multiple of the
// measured noise floor, never below the configured floor.
func (m *Machine) onsetThreshold(noiseLevel float64) float64 {
	threshold := noiseLevel * m.cfg.StartFactor
	if threshold < m.cfg.MinStartVel {
		threshold = m.cfg.MinStartVel
	}
	return threshold
}

// waitDelay draws the random pre-cue delay from [WaitMin, WaitMax).
func (m *Machine) waitDelay() time.Duration {
	span := m.cfg.WaitMax - m.cfg.WaitMin
	if span <= 0 {
		return m.cfg.WaitMin
	}
	return m.cfg.WaitMin + time.Duration(m.rng.Int63n(int64(span)))
}
