package trial

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/ayusman/jab/internal/detector"
)

// rawConfig disables smoothing and the dead zone so wrist speeds are exact.
func rawConfig() Config {
	cfg := DefaultConfig()
	cfg.Alpha = 1.0
	cfg.MinDisplacement = 0
	return cfg
}

func TestEngine_FirstFrameReportsZero(t *testing.T) {
	e := NewEngine(rawConfig(), rand.NewSource(1))

	e.Feed(detector.GuardPoseLandmarks(), time.Now())
	if e.Speed() != 0 {
		t.Errorf("speed after first frame = %f, want 0", e.Speed())
	}
}

func TestEngine_MaxOfWrists(t *testing.T) {
	e := NewEngine(rawConfig(), rand.NewSource(1))
	base := time.Now()

	guard := detector.GuardPoseLandmarks()
	e.Feed(guard, base)

	// Move only the right wrist: 0.1 units in 0.1s.
	moved := *guard
	moved.Points[detector.RightWrist].X += 0.1
	e.Feed(&moved, base.Add(100*time.Millisecond))

	if math.Abs(e.Speed()-1.0) > 1e-9 {
		t.Errorf("speed = %f, want 1.0 (faster wrist wins)", e.Speed())
	}
}

func TestEngine_MissingLandmarksSkipUpdate(t *testing.T) {
	e := NewEngine(rawConfig(), rand.NewSource(1))
	base := time.Now()

	guard := detector.GuardPoseLandmarks()
	e.Feed(guard, base)
	phase := e.Phase()

	// An empty frame changes nothing: no phase advance, no smoothing.
	e.Feed(nil, base.Add(33*time.Millisecond))
	if e.Phase() != phase {
		t.Error("empty frame advanced the phase")
	}
	if e.Speed() != 0 {
		t.Errorf("empty frame changed speed to %f", e.Speed())
	}

	// The next real frame's dt spans the gap: wrists moved 0.1 units
	// since the frame before the gap, 0.2s ago.
	shifted := detector.ShiftedPose(guard, 0.1, 0, 0)
	e.Feed(shifted, base.Add(200*time.Millisecond))

	if math.Abs(e.Speed()-0.5) > 1e-9 {
		t.Errorf("speed after gap = %f, want 0.5 (dt spans the gap)", e.Speed())
	}
}

func TestEngine_CompletesTrialFromPoses(t *testing.T) {
	cfg := rawConfig()
	cfg.NoiseSamples = 5
	cfg.ConsecFrames = 2
	cfg.WaitMin = 100 * time.Millisecond
	cfg.WaitMax = 100 * time.Millisecond
	e := NewEngine(cfg, rand.NewSource(1))

	at := time.Now()
	step := 33 * time.Millisecond

	// Hold still through calibration.
	guard := detector.GuardPoseLandmarks()
	for i := 0; i < 5; i++ {
		e.Feed(guard, at)
		at = at.Add(step)
	}
	if e.Phase() != PhaseWait {
		t.Fatalf("after calibration: phase = %v, want %v", e.Phase(), PhaseWait)
	}

	// Hold through the wait window until the cue fires.
	at = at.Add(cfg.WaitMax)
	e.Feed(guard, at)
	if e.Phase() != PhaseSignal {
		t.Fatalf("after wait: phase = %v, want %v", e.Phase(), PhaseSignal)
	}

	// Punch: the wrist travels toward the camera over consecutive frames.
	pose := guard
	for i := 0; i < 2; i++ {
		at = at.Add(step)
		pose = detector.ShiftedPose(pose, 0, 0, -0.1)
		e.Feed(pose, at)
	}
	if e.Phase() != PhaseMoving {
		t.Fatalf("after punch frames: phase = %v, want %v", e.Phase(), PhaseMoving)
	}

	snap := e.Snapshot()
	if snap.Reaction <= 0 {
		t.Errorf("reaction = %v, want > 0", snap.Reaction)
	}
}

func TestEngine_Recalibrate(t *testing.T) {
	cfg := rawConfig()
	cfg.NoiseSamples = 2
	e := NewEngine(cfg, rand.NewSource(1))

	at := time.Now()
	guard := detector.GuardPoseLandmarks()
	e.Feed(guard, at)
	e.Feed(guard, at.Add(33*time.Millisecond))
	if e.Phase() != PhaseWait {
		t.Fatalf("setup failed: phase = %v", e.Phase())
	}

	e.Recalibrate()

	if e.Phase() != PhaseInit {
		t.Errorf("phase after Recalibrate = %v, want %v", e.Phase(), PhaseInit)
	}
	if e.Speed() != 0 {
		t.Errorf("speed after Recalibrate = %f, want 0", e.Speed())
	}

	// Smoothing history is gone: the next frame is a first frame.
	e.Feed(detector.ShiftedPose(guard, 0.5, 0, 0), at.Add(66*time.Millisecond))
	if e.Speed() != 0 {
		t.Errorf("first frame after Recalibrate: speed = %f, want 0", e.Speed())
	}
}
