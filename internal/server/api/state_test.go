package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ayusman/jab/internal/store"
	"github.com/ayusman/jab/internal/trial"
)

// stubTrainer implements Trainer for handler tests.
type stubTrainer struct {
	engine  *trial.Engine
	enabled bool
	applied *store.Profile
}

func newStubTrainer() *stubTrainer {
	return &stubTrainer{engine: trial.NewEngine(trial.DefaultConfig(), nil)}
}

func (s *stubTrainer) Engine() *trial.Engine   { return s.engine }
func (s *stubTrainer) IsEnabled() bool         { return s.enabled }
func (s *stubTrainer) SetEnabled(enabled bool) { s.enabled = enabled }

func (s *stubTrainer) ApplyProfile(p *store.Profile) {
	s.applied = p
	s.engine = trial.NewEngine(p.TrialConfig(), nil)
}

func TestStateHandler_Get(t *testing.T) {
	trainer := newStubTrainer()
	handler := NewStateHandler(trainer)

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response stateResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Phase != "init" {
		t.Errorf("expected phase init, got %s", response.Phase)
	}
	if response.Enabled {
		t.Error("expected enabled false")
	}
	if response.Reaction != "0.000" {
		t.Errorf("expected reaction 0.000, got %s", response.Reaction)
	}
}

func TestStateHandler_SetEnabled(t *testing.T) {
	trainer := newStubTrainer()
	handler := NewStateHandler(trainer)

	req := httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(`{"enabled": true}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !trainer.enabled {
		t.Error("expected trainer enabled")
	}

	var response stateResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Enabled {
		t.Error("response should reflect the new enabled state")
	}
}

func TestCalibrateHandler(t *testing.T) {
	trainer := newStubTrainer()
	handler := NewCalibrateHandler(trainer)

	t.Run("POST succeeds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/calibrate", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})

	t.Run("GET is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/calibrate", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestActivateHandler(t *testing.T) {
	s := newTestStore(t)
	trainer := newStubTrainer()
	handler := NewActivateHandler(s, trainer)

	profile := store.DefaultProfile("prof-act", "match day")
	profile.ConsecFrames = 5
	if err := s.Profiles().Create(profile); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	t.Run("applies profile and saves setting", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles/prof-act/activate", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		if trainer.applied == nil || trainer.applied.ID != "prof-act" {
			t.Fatal("expected profile to be applied to the trainer")
		}
		if got := trainer.Engine().Config().ConsecFrames; got != 5 {
			t.Errorf("expected ConsecFrames 5 on the new engine, got %d", got)
		}

		active, err := s.Settings().Get(store.SettingActiveProfile)
		if err != nil {
			t.Fatalf("Settings().Get failed: %v", err)
		}
		if active != "prof-act" {
			t.Errorf("expected active profile prof-act, got %s", active)
		}
	})

	t.Run("returns 404 for unknown profile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/profiles/nope/activate", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("rejects GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profiles/prof-act/activate", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}
