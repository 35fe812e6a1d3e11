package trial

import (
	"fmt"
	"time"
)

// Result is a read-only snapshot of the trial state for renderers. Reaction
// and PeakSpeed are meaningful once the phase has reached MOVING; NoiseLevel
// once calibration has completed.
type Result struct {
	Phase      Phase         `json:"phase"`
	Reaction   time.Duration `json:"reaction_ns"`
	PeakSpeed  float64       `json:"peak_speed"`
	NoiseLevel float64       `json:"noise_level"`
}

// ReactionSeconds formats the reaction time in seconds to three decimals.
func (r Result) ReactionSeconds() string {
	return fmt.Sprintf("%.3f", r.Reaction.Seconds())
}

// PeakSpeedString formats the peak speed to three decimals.
func (r Result) PeakSpeedString() string {
	return fmt.Sprintf("%.3f", r.PeakSpeed)
}

// Snapshot returns the current phase and trial metrics. Fields that are not
// yet determined in the current phase are zero.
func (m *Machine) Snapshot() Result {
	switch st := m.state.(type) {
	case waitState:
		return Result{Phase: PhaseWait, NoiseLevel: st.noiseLevel}
	case signalState:
		return Result{Phase: PhaseSignal, NoiseLevel: st.noiseLevel}
	case movingState:
		return Result{
			Phase:      PhaseMoving,
			Reaction:   st.trial.Reaction,
			PeakSpeed:  st.trial.PeakSpeed,
			NoiseLevel: st.trial.NoiseLevel,
		}
	case resultState:
		return Result{
			Phase:      PhaseResult,
			Reaction:   st.trial.Reaction,
			PeakSpeed:  st.trial.PeakSpeed,
			NoiseLevel: st.trial.NoiseLevel,
		}
	default:
		return Result{Phase: m.state.phase()}
	}
}
