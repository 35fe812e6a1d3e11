package app

import (
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/jab/internal/capture"
	"github.com/ayusman/jab/internal/detector"
	"github.com/ayusman/jab/internal/store"
	"github.com/ayusman/jab/internal/trial"
)

func TestNew_Defaults(t *testing.T) {
	a := New(Config{})
	defer a.Stop()

	if a.IsEnabled() {
		t.Error("new app should start disabled")
	}
	if a.Engine() == nil {
		t.Fatal("engine should be initialized")
	}
	if a.Detector() == nil {
		t.Fatal("detector should be initialized")
	}
	if got := a.Engine().Config().NoiseSamples; got != trial.DefaultConfig().NoiseSamples {
		t.Errorf("expected default trial config, got NoiseSamples=%d", got)
	}
}

func TestApp_ApplyProfile(t *testing.T) {
	a := New(Config{})
	defer a.Stop()

	p := store.DefaultProfile("p1", "sparring")
	p.NoiseSamples = 7
	p.StartFactor = 5.0
	a.ApplyProfile(p)

	cfg := a.Engine().Config()
	if cfg.NoiseSamples != 7 {
		t.Errorf("expected NoiseSamples 7, got %d", cfg.NoiseSamples)
	}
	if cfg.StartFactor != 5.0 {
		t.Errorf("expected StartFactor 5.0, got %v", cfg.StartFactor)
	}
}

func TestApp_LoadActiveProfile(t *testing.T) {
	s := newTestStore(t)

	a := New(Config{Store: s})
	defer a.Stop()

	p := store.DefaultProfile("prof-1", "defense")
	p.ConsecFrames = 4
	if err := s.Profiles().Create(p); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Settings().Set(store.SettingActiveProfile, p.ID); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := a.LoadActiveProfile(); err != nil {
		t.Fatalf("LoadActiveProfile failed: %v", err)
	}
	if got := a.Engine().Config().ConsecFrames; got != 4 {
		t.Errorf("expected ConsecFrames 4, got %d", got)
	}
}

func TestApp_LoadActiveProfileMissing(t *testing.T) {
	s := newTestStore(t)

	a := New(Config{Store: s})
	defer a.Stop()

	// No setting at all.
	if err := a.LoadActiveProfile(); err != nil {
		t.Fatalf("missing setting should not be an error: %v", err)
	}

	// Setting points at a deleted profile.
	if err := s.Settings().Set(store.SettingActiveProfile, "gone"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := a.LoadActiveProfile(); err != nil {
		t.Fatalf("dangling profile should not be an error: %v", err)
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir() + "/jab.db")
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestApp_PipelineReachesWait drives the full capture loop with a mock
// camera and detector: presence triggers on a scene change, the still
// guard pose calibrates the noise floor, and the machine settles in WAIT.
func TestApp_PipelineReachesWait(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping gocv test in short mode")
	}

	dark := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer dark.Close()
	bright := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer bright.Close()
	bright.SetTo(gocv.NewScalar(250, 250, 250, 0))

	cfg := trial.DefaultConfig()
	cfg.NoiseSamples = 5
	cfg.WaitMin = 10 * time.Second
	cfg.WaitMax = 10 * time.Second

	a := New(Config{Trial: cfg})
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{&dark, &bright}, true))

	mock := detector.NewMockDetector()
	mock.SetPose(detector.GuardPoseLandmarks())
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer a.Stop()

	a.SetEnabled(true)

	deadline := time.After(3 * time.Second)
	for {
		if a.Engine().Phase() == trial.PhaseWait {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("pipeline never reached WAIT, phase=%s", a.Engine().Phase())
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestApp_PipelineDisabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping gocv test in short mode")
	}

	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	a := New(Config{})
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	mock := detector.NewMockDetector()
	mock.SetPose(detector.GuardPoseLandmarks())
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer a.Stop()

	time.Sleep(300 * time.Millisecond)
	if a.Engine().Phase() != trial.PhaseInit {
		t.Errorf("disabled app should not advance, phase=%s", a.Engine().Phase())
	}
}
