package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/jab/internal/store"
	"github.com/ayusman/jab/internal/trial"
)

// Trainer is the slice of the application the state handlers need.
type Trainer interface {
	Engine() *trial.Engine
	IsEnabled() bool
	SetEnabled(enabled bool)
	ApplyProfile(p *store.Profile)
}

// StateHandler reports and toggles the trainer's live state.
type StateHandler struct {
	trainer Trainer
}

// NewStateHandler creates a new StateHandler for the given trainer.
func NewStateHandler(t Trainer) *StateHandler {
	return &StateHandler{trainer: t}
}

type stateResponse struct {
	Enabled    bool    `json:"enabled"`
	Phase      string  `json:"phase"`
	Speed      float64 `json:"speed"`
	Reaction   string  `json:"reaction"`
	PeakSpeed  string  `json:"peak_speed"`
	NoiseLevel float64 `json:"noise_level"`
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ServeHTTP handles GET (report) and POST (enable toggle) on /api/state.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.snapshot())
	case http.MethodPost:
		var req setEnabledRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		h.trainer.SetEnabled(req.Enabled)
		writeJSON(w, http.StatusOK, h.snapshot())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *StateHandler) snapshot() stateResponse {
	snap := h.trainer.Engine().Snapshot()
	return stateResponse{
		Enabled:    h.trainer.IsEnabled(),
		Phase:      snap.Phase.String(),
		Speed:      h.trainer.Engine().Speed(),
		Reaction:   snap.ReactionSeconds(),
		PeakSpeed:  snap.PeakSpeedString(),
		NoiseLevel: snap.NoiseLevel,
	}
}

// CalibrateHandler restarts noise calibration on demand.
type CalibrateHandler struct {
	trainer Trainer
}

// NewCalibrateHandler creates a new CalibrateHandler for the given trainer.
func NewCalibrateHandler(t Trainer) *CalibrateHandler {
	return &CalibrateHandler{trainer: t}
}

// ServeHTTP handles POST /api/calibrate.
func (h *CalibrateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.trainer.Engine().Recalibrate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "calibrating"})
}

// ActivateHandler switches the trainer to a stored profile and remembers
// the choice, so it is restored on the next start.
type ActivateHandler struct {
	store   *store.Store
	trainer Trainer
}

// NewActivateHandler creates a new ActivateHandler.
func NewActivateHandler(s *store.Store, t Trainer) *ActivateHandler {
	return &ActivateHandler{store: s, trainer: t}
}

// ServeHTTP handles POST /api/profiles/{id}/activate.
func (h *ActivateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/profiles/")
	id := strings.TrimSuffix(path, "/activate")
	if id == "" || id == path {
		writeError(w, http.StatusBadRequest, "Profile ID is required")
		return
	}

	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	h.trainer.ApplyProfile(profile)

	if err := h.store.Settings().Set(store.SettingActiveProfile, profile.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save active profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}
