// Package main provides the entry point for the takeoff desktop application.
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	fyneapp "fyne.io/fyne/v2/app"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/config"
	"elec-takeoff/internal/store"
	"elec-takeoff/internal/version"
	"elec-takeoff/ui/mainwindow"
	"elec-takeoff/ui/prefs"
)

const appID = "io.github.elec-takeoff"

// configPath returns $TAKEOFF_CONFIG, or config.yaml in the user config dir.
func configPath() string {
	if p := os.Getenv("TAKEOFF_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "elec-takeoff", "config.yaml")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting Electrical Takeoff v%s", version.Version)

	cfg, err := config.Parse(configPath())
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		cfg = config.Default()
	}
	appPrefs := prefs.Load()

	appState := app.NewState(
		app.WithHistoryDepth(cfg.HistoryDepth),
		app.WithCategoryRules(cfg.Categories),
		app.WithMeasureOptions(appPrefs.MeasureOptions(cfg.MeasureDefaults)),
	)

	lib, err := store.Open(context.Background(), cfg.StorePath)
	if err != nil {
		log.Printf("Library: %v", err)
	} else {
		defer lib.Close()
	}

	a := fyneapp.NewWithID(appID)
	a.Settings().SetTheme(&app.TakeoffTheme{})

	win := mainwindow.New(a, appState, cfg, appPrefs, lib)

	// Handle command line arguments
	if len(os.Args) > 1 {
		win.OpenProject(os.Args[1])
	} else {
		win.Restore()
	}

	win.ShowAndRun()
}
