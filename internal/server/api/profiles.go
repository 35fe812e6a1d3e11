// Package api provides HTTP API handlers for the jab reflex trainer.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/jab/internal/store"
)

// ProfileHandler handles HTTP requests for tuning profile resources.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/profiles or /api/profiles/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type profileRequest struct {
	Name            string   `json:"name"`
	Alpha           *float64 `json:"alpha"`
	MinDisplacement *float64 `json:"min_displacement"`
	NoiseSamples    *int     `json:"noise_samples"`
	StartFactor     *float64 `json:"start_factor"`
	MinStartVel     *float64 `json:"min_start_vel"`
	ConsecFrames    *int     `json:"consec_frames"`
	MovingWindowMs  *int64   `json:"moving_window_ms"`
	ResultHoldMs    *int64   `json:"result_hold_ms"`
	WaitMinMs       *int64   `json:"wait_min_ms"`
	WaitMaxMs       *int64   `json:"wait_max_ms"`
}

type profileResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Alpha           float64 `json:"alpha"`
	MinDisplacement float64 `json:"min_displacement"`
	NoiseSamples    int     `json:"noise_samples"`
	StartFactor     float64 `json:"start_factor"`
	MinStartVel     float64 `json:"min_start_vel"`
	ConsecFrames    int     `json:"consec_frames"`
	MovingWindowMs  int64   `json:"moving_window_ms"`
	ResultHoldMs    int64   `json:"result_hold_ms"`
	WaitMinMs       int64   `json:"wait_min_ms"`
	WaitMaxMs       int64   `json:"wait_max_ms"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Profile to a profileResponse.
func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:              p.ID,
		Name:            p.Name,
		Alpha:           p.Alpha,
		MinDisplacement: p.MinDisplacement,
		NoiseSamples:    p.NoiseSamples,
		StartFactor:     p.StartFactor,
		MinStartVel:     p.MinStartVel,
		ConsecFrames:    p.ConsecFrames,
		MovingWindowMs:  p.MovingWindowMs,
		ResultHoldMs:    p.ResultHoldMs,
		WaitMinMs:       p.WaitMinMs,
		WaitMaxMs:       p.WaitMaxMs,
		CreatedAt:       p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// applyRequest copies the fields present in the request onto the profile.
func applyRequest(p *store.Profile, req *profileRequest) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Alpha != nil {
		p.Alpha = *req.Alpha
	}
	if req.MinDisplacement != nil {
		p.MinDisplacement = *req.MinDisplacement
	}
	if req.NoiseSamples != nil {
		p.NoiseSamples = *req.NoiseSamples
	}
	if req.StartFactor != nil {
		p.StartFactor = *req.StartFactor
	}
	if req.MinStartVel != nil {
		p.MinStartVel = *req.MinStartVel
	}
	if req.ConsecFrames != nil {
		p.ConsecFrames = *req.ConsecFrames
	}
	if req.MovingWindowMs != nil {
		p.MovingWindowMs = *req.MovingWindowMs
	}
	if req.ResultHoldMs != nil {
		p.ResultHoldMs = *req.ResultHoldMs
	}
	if req.WaitMinMs != nil {
		p.WaitMinMs = *req.WaitMinMs
	}
	if req.WaitMaxMs != nil {
		p.WaitMaxMs = *req.WaitMaxMs
	}
}

// validate checks the profile's tunables for values the engine rejects.
func validate(p *store.Profile) string {
	if p.Alpha <= 0 || p.Alpha > 1 {
		return "alpha must be in (0, 1]"
	}
	if p.NoiseSamples < 1 {
		return "noise_samples must be at least 1"
	}
	if p.ConsecFrames < 1 {
		return "consec_frames must be at least 1"
	}
	if p.WaitMaxMs < p.WaitMinMs {
		return "wait_max_ms must not be less than wait_min_ms"
	}
	return ""
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/profiles and returns all profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}

	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id} and returns a single profile.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// create handles POST /api/profiles and creates a new profile.
// Omitted tunables fall back to the engine defaults.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	profile := store.DefaultProfile(uuid.New().String(), req.Name)
	applyRequest(profile, &req)

	if msg := validate(profile); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id} and updates an existing profile.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	applyRequest(profile, &req)

	if msg := validate(profile); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// delete handles DELETE /api/profiles/{id} and removes a profile.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
