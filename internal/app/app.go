// Package app wires the capture, detection, and trial components into the
// running reflex trainer.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/jab/internal/capture"
	"github.com/ayusman/jab/internal/detector"
	"github.com/ayusman/jab/internal/plugin"
	"github.com/ayusman/jab/internal/store"
	"github.com/ayusman/jab/internal/trial"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while waiting for a subject to appear.
	IdleFPS = 10
	// ActiveFPS is the frame rate during a training session. Reaction
	// timing resolution is bounded by this.
	ActiveFPS = 30
	// IdleTimeoutMs is how long the pipeline keeps running without a
	// detected pose before dropping back to idle.
	IdleTimeoutMs = 5000
)

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	PluginDir      string
	CameraID       int
	PresenceThresh float64
	Trial          trial.Config
}

// App is the main application that orchestrates the capture pipeline and
// the trial engine.
type App struct {
	config     Config
	camera     capture.Camera
	presence   *capture.PresenceDetector
	detector   detector.Detector
	engine     *trial.Engine
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	onResult   func(trial.Result)
	enabled    bool
	mu         sync.RWMutex
	stopCh     chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	presenceThresh := config.PresenceThresh
	if presenceThresh <= 0 {
		presenceThresh = 1.0 // 1% pixel change
	}

	trialCfg := config.Trial
	if trialCfg.NoiseSamples == 0 {
		trialCfg = trial.DefaultConfig()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		presence:   capture.NewPresenceDetector(presenceThresh),
		engine:     trial.NewEngine(trialCfg, nil),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		pluginExec: plugin.NewExecutor(5 * time.Second),
	}

	// Try MediaPipe first, fall back to the mock detector.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe pose detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables the trainer.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether the trainer is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnResult sets the callback invoked when a trial completes.
func (a *App) OnResult(fn func(trial.Result)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onResult = fn
}

// SetDetector sets the pose detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
// It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// ApplyProfile replaces the trial engine's tuning with the given profile.
// The running calibration and trial are discarded.
func (a *App) ApplyProfile(p *store.Profile) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.engine = trial.NewEngine(p.TrialConfig(), nil)
	log.Printf("Applied profile %q", p.Name)
}

// LoadActiveProfile looks up the active profile setting and applies the
// profile it names. A missing setting or profile is not an error; the
// engine keeps its current tuning.
func (a *App) LoadActiveProfile() error {
	if a.config.Store == nil {
		return nil
	}

	id, err := a.config.Store.Settings().Get(store.SettingActiveProfile)
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return err
	}

	p, err := a.config.Store.Profiles().GetByID(id)
	if err != nil {
		if err == store.ErrNotFound {
			log.Printf("Active profile %s no longer exists", id)
			return nil
		}
		return err
	}

	a.ApplyProfile(p)
	return nil
}

// DiscoverPlugins scans the plugin directory and loads available cue plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the capture pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Capture pipeline started")
	return nil
}

// Stop halts the capture pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.presence.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Capture pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// PresenceDetector returns the presence detector instance.
func (a *App) PresenceDetector() *capture.PresenceDetector {
	return a.presence
}

// Engine returns the trial engine.
func (a *App) Engine() *trial.Engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine
}

// PluginManager returns the cue plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the pose detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
