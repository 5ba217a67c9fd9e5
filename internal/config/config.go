// Package config loads the YAML configuration of the takeoff tools.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"elec-takeoff/internal/bom"
	"elec-takeoff/internal/draw"
	"elec-takeoff/internal/history"
	"elec-takeoff/internal/tags"
	"elec-takeoff/internal/takeoff"
)

// RenderQuality selects the page bitmap scaler.
type RenderQuality string

const (
	QualityHigh  RenderQuality = "high"
	QualityDraft RenderQuality = "draft"
)

type Config struct {
	FreeformEpsilon  float64
	HitTolerance     float64
	DragThreshold    float64
	HistoryDepth     int
	AutosaveInterval time.Duration

	StorePath     string
	RenderQuality RenderQuality

	Categories      tags.CategoryRules
	MeasureDefaults takeoff.MeasureOptions
	Prices          bom.PriceBook
}

// Default returns the built-in configuration.
func Default() *Config {
	s := draw.DefaultSettings()
	return &Config{
		FreeformEpsilon:  s.Epsilon,
		HitTolerance:     s.HitTolerance,
		DragThreshold:    s.DragThreshold,
		HistoryDepth:     history.DefaultDepth,
		AutosaveInterval: 2 * time.Minute,
		StorePath:        "takeoff.db",
		RenderQuality:    QualityHigh,
		Categories:       tags.DefaultCategoryRules(),
		MeasureDefaults:  takeoff.DefaultMeasureOptions(),
	}
}

// Parse reads a configuration file. A missing file yields the defaults;
// out-of-range values are replaced by their defaults.
func Parse(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	file, err := parseFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	c.apply(file)
	return c, nil
}

// DrawSettings returns the interaction engine tuning.
func (c *Config) DrawSettings() draw.Settings {
	return draw.Settings{
		Epsilon:       c.FreeformEpsilon,
		HitTolerance:  c.HitTolerance,
		DragThreshold: c.DragThreshold,
	}
}

type configFile struct {
	FreeformEpsilon  *float64 `yaml:"freeform_epsilon"`
	HitTolerance     *float64 `yaml:"hit_tolerance"`
	DragThreshold    *float64 `yaml:"drag_threshold"`
	HistoryDepth     *int     `yaml:"history_depth"`
	AutosaveInterval *string  `yaml:"autosave_interval"`

	StorePath     string `yaml:"store_path"`
	RenderQuality string `yaml:"render_quality"`

	Categories      []tags.CategoryRule `yaml:"categories"`
	MeasureDefaults *measureConfig      `yaml:"measure_defaults"`
	Prices          *bom.PriceBook      `yaml:"prices"`
}

type conductorConfig struct {
	Count      int    `yaml:"count"`
	Size       string `yaml:"size"`
	Material   string `yaml:"material"`
	Insulation string `yaml:"insulation"`
}

type measureConfig struct {
	Raceway                string            `yaml:"raceway"`
	Conductors             []conductorConfig `yaml:"conductors"`
	ExtraRacewayPerPoint   float64           `yaml:"extra_raceway_per_point"`
	ExtraConductorPerPoint float64           `yaml:"extra_conductor_per_point"`
	BoxesPerPoint          float64           `yaml:"boxes_per_point"`
	WasteFactor            float64           `yaml:"waste_factor"`
	Color                  string            `yaml:"color"`
	LineWidth              float64           `yaml:"line_width"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return &config, nil
}

func (c *Config) apply(f *configFile) {
	positive := func(name string, v *float64, dst *float64) {
		if v == nil {
			return
		}
		if *v > 0 {
			*dst = *v
			return
		}
		log.Printf("Config: %s must be positive, keeping %v", name, *dst)
	}
	positive("freeform_epsilon", f.FreeformEpsilon, &c.FreeformEpsilon)
	positive("hit_tolerance", f.HitTolerance, &c.HitTolerance)

	if f.DragThreshold != nil {
		if *f.DragThreshold >= 0 {
			c.DragThreshold = *f.DragThreshold
		} else {
			log.Printf("Config: drag_threshold must not be negative, keeping %v", c.DragThreshold)
		}
	}

	if f.HistoryDepth != nil {
		if *f.HistoryDepth > 0 {
			c.HistoryDepth = *f.HistoryDepth
		} else {
			log.Printf("Config: history_depth must be positive, keeping %d", c.HistoryDepth)
		}
	}

	if f.AutosaveInterval != nil {
		d, err := time.ParseDuration(*f.AutosaveInterval)
		switch {
		case err != nil:
			log.Printf("Config: autosave_interval %q: %v", *f.AutosaveInterval, err)
		case d < 0:
			log.Printf("Config: autosave_interval must not be negative")
		default:
			c.AutosaveInterval = d // 0 disables autosave
		}
	}

	if f.StorePath != "" {
		c.StorePath = f.StorePath
	}

	switch RenderQuality(f.RenderQuality) {
	case "":
	case QualityHigh, QualityDraft:
		c.RenderQuality = RenderQuality(f.RenderQuality)
	default:
		log.Printf("Config: unknown render_quality %q, using %s", f.RenderQuality, c.RenderQuality)
	}

	if len(f.Categories) > 0 {
		c.Categories = f.Categories
	}

	if m := f.MeasureDefaults; m != nil {
		c.MeasureDefaults = m.options(c.MeasureDefaults)
	}

	if f.Prices != nil {
		c.Prices = *f.Prices
	}
}

// options converts the YAML form, keeping defaults for unset styling.
func (m *measureConfig) options(def takeoff.MeasureOptions) takeoff.MeasureOptions {
	opts := takeoff.MeasureOptions{
		Raceway:                m.Raceway,
		ExtraRacewayPerPoint:   m.ExtraRacewayPerPoint,
		ExtraConductorPerPoint: m.ExtraConductorPerPoint,
		BoxesPerPoint:          m.BoxesPerPoint,
		WasteFactor:            m.WasteFactor,
		Style:                  def.Style,
	}
	if opts.Raceway == "" {
		opts.Raceway = def.Raceway
	}
	if len(m.Conductors) == 0 {
		opts.Conductors = def.Conductors
	}
	if len(m.Conductors) > takeoff.MaxConductorGroups {
		log.Printf("Config: only %d conductor groups are used", takeoff.MaxConductorGroups)
	}
	for i, c := range m.Conductors {
		if i >= takeoff.MaxConductorGroups {
			break
		}
		opts.Conductors[i] = takeoff.ConductorSpec(c)
	}
	if m.Color != "" {
		opts.Style.Color = m.Color
	}
	if m.LineWidth > 0 {
		opts.Style.LineWidth = m.LineWidth
	}
	return opts.Normalized()
}
