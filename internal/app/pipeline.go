package app

import (
	"fmt"
	"log"
	"time"

	"github.com/ayusman/jab/internal/plugin"
	"github.com/ayusman/jab/internal/trial"
)

// runPipeline is the main capture loop. It runs at a low frame rate until
// the presence detector sees a subject, then switches to the active rate
// and feeds wrist landmarks into the trial engine. When no pose has been
// seen for IdleTimeoutMs it drops back to idle and restarts calibration.
func (a *App) runPipeline(stopCh chan struct{}) {
	active := false
	lastPose := time.Now()
	prevPhase := trial.PhaseInit

	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				continue
			}

			now := time.Now()

			present, _ := a.presence.Observe(frame)
			if !active && present {
				active = true
				lastPose = now
				a.camera.SetFPS(ActiveFPS)
				ticker.Reset(time.Second / ActiveFPS)
				log.Println("Subject detected, session active")
			}

			if !active {
				frame.Close()
				continue
			}

			pose, err := a.Detector().Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Pose detection error: %v", err)
				continue
			}

			if pose != nil {
				lastPose = now
				a.Engine().Feed(pose, now)

				phase := a.Engine().Phase()
				if phase != prevPhase {
					a.onPhaseChange(prevPhase, phase)
				}
				prevPhase = phase
			} else if now.Sub(lastPose) > IdleTimeoutMs*time.Millisecond {
				active = false
				prevPhase = trial.PhaseInit
				a.camera.SetFPS(IdleFPS)
				ticker.Reset(time.Second / IdleFPS)
				a.Engine().Recalibrate()
				a.presence.Reset()
				log.Println("Subject lost, session idle")
			}
		}
	}
}

// onPhaseChange fires cue plugins on the transitions that matter to them.
func (a *App) onPhaseChange(from, to trial.Phase) {
	switch {
	case to == trial.PhaseSignal:
		a.dispatchEvent(plugin.EventSignal)
	case from == trial.PhaseMoving && to == trial.PhaseResult:
		snap := a.Engine().Snapshot()
		log.Printf("Trial complete: reaction %ss, peak speed %s",
			snap.ReactionSeconds(), snap.PeakSpeedString())

		a.mu.RLock()
		cb := a.onResult
		a.mu.RUnlock()
		if cb != nil {
			cb(snap)
		}

		a.dispatchEvent(plugin.EventResult)
	}
}

// dispatchEvent runs every plugin subscribed to the event. Plugins run
// concurrently so a slow cue cannot stall the capture loop.
func (a *App) dispatchEvent(event string) {
	plugins := a.pluginMgr.ForEvent(event)
	if len(plugins) == 0 {
		return
	}

	snap := a.Engine().Snapshot()
	req := plugin.Request{
		Event:      event,
		Phase:      snap.Phase.String(),
		Reaction:   snap.ReactionSeconds(),
		PeakSpeed:  snap.PeakSpeedString(),
		NoiseLevel: fmt.Sprintf("%.4f", snap.NoiseLevel),
	}

	for _, p := range plugins {
		go func(p *plugin.Plugin) {
			if _, err := a.pluginExec.Execute(p, &req); err != nil {
				log.Printf("Plugin %s failed on %s: %v", p.Manifest.Name, event, err)
			}
		}(p)
	}
}
