package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ayusman/jab/internal/app"
	"github.com/ayusman/jab/internal/server"
	"github.com/ayusman/jab/internal/store"
	"github.com/ayusman/jab/internal/tray"
	"github.com/ayusman/jab/internal/trial"
)

const serverAddr = ":8090"

func main() {
	fmt.Println("Jab - Camera Reflex Trainer")

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".jab")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "jab.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Build the application
	cameraID := 0
	if v, err := st.Settings().Get(store.SettingCameraID); err == nil {
		if id, err := strconv.Atoi(v); err == nil {
			cameraID = id
		}
	}

	a := app.New(app.Config{
		Store:     st,
		PluginDir: findPluginDir(dataDir),
		CameraID:  cameraID,
	})

	if err := a.LoadActiveProfile(); err != nil {
		log.Printf("Failed to load active profile: %v", err)
	}
	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}
	for _, p := range a.PluginManager().List() {
		fmt.Printf("Loaded plugin: %s %s\n", p.Manifest.Name, p.Manifest.Version)
	}

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start capture pipeline: %v", err)
	}
	defer a.Stop()

	// Configure and start the server
	webDir := findWebDir(dataDir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Trainer:   a,
		Camera:    a.Camera(),
	})

	go func() {
		fmt.Printf("Starting server on %s\n", serverAddr)
		if err := srv.ListenAndServe(serverAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Run the tray on the main goroutine; it blocks until Quit.
	t := tray.New()
	if v, err := st.Settings().Get(store.SettingEnabled); err == nil {
		t.SetEnabled(v != "false")
	}
	a.SetEnabled(t.IsEnabled())

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		if err := st.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to save enabled state: %v", err)
		}
	})
	t.OnCalibrate(func() {
		a.Engine().Recalibrate()
	})
	t.OnSettings(func() {
		fmt.Printf("Dashboard: http://localhost%s/\n", serverAddr)
	})
	t.OnQuit(func() {
		a.Stop()
	})

	a.OnResult(func(r trial.Result) {
		t.SetLastResult(r.ReactionSeconds())
	})

	t.Run()
}

// findPluginDir prefers a plugins directory next to the binary, falling
// back to ~/.jab/plugins.
func findPluginDir(dataDir string) string {
	if info, err := os.Stat("plugins"); err == nil && info.IsDir() {
		if abs, err := filepath.Abs("plugins"); err == nil {
			return abs
		}
		return "plugins"
	}
	return filepath.Join(dataDir, "plugins")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.jab/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
