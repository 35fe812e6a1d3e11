// Package plugin provides discovery and execution of cue plugins: external
// programs that announce trial events (the go cue, the finished result) via
// sound, speech, or anything else the host can run.
package plugin

import "encoding/json"

// Trial events delivered to plugins.
const (
	// EventSignal fires when the go cue is shown (WAIT to SIGNAL).
	EventSignal = "signal"
	// EventResult fires when a trial completes (MOVING to RESULT).
	EventResult = "result"
)

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Events       []string        `json:"events"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request represents a trial event sent to a plugin for handling.
type Request struct {
	Event      string          `json:"event"`
	Phase      string          `json:"phase"`
	Reaction   string          `json:"reaction,omitempty"`   // seconds, 3 decimals
	PeakSpeed  string          `json:"peak_speed,omitempty"` // 3 decimals
	NoiseLevel string          `json:"noise_level,omitempty"`
	Config     json.RawMessage `json:"config"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// HandlesEvent reports whether the plugin subscribed to the given event.
func (p *Plugin) HandlesEvent(event string) bool {
	for _, e := range p.Manifest.Events {
		if e == event {
			return true
		}
	}
	return false
}
