// Command takeoff works with saved takeoff projects from the command line:
// bills of materials, page footage, the project library and sheet labels.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"elec-takeoff/internal/app"
	"elec-takeoff/internal/config"
	"elec-takeoff/internal/project"
	"elec-takeoff/internal/version"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "takeoff",
	Short: "Electrical takeoff projects from the command line",
	Long: `takeoff reads the projects written by the takeoff desktop application.
It derives bills of materials, reports measured footage per page, keeps a
SQLite library of projects and recognises sheet numbers on page images.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", os.Getenv("TAKEOFF_CONFIG"), "YAML configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Parse(configFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newState(cfg *config.Config) *app.State {
	return app.NewState(
		app.WithHistoryDepth(cfg.HistoryDepth),
		app.WithCategoryRules(cfg.Categories),
		app.WithMeasureOptions(cfg.MeasureDefaults),
	)
}

// loadProject restores a project file into a fresh state. Load warnings
// go to errOut and never fail the command.
func loadProject(cfg *config.Config, path string, errOut io.Writer) (*app.State, error) {
	f, warnings, err := project.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		fmt.Fprintf(errOut, "warning: %s\n", w.Error())
	}
	st := newState(cfg)
	st.Restore(f)
	return st, nil
}
