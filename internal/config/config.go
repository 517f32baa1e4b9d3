// Package config holds the tunables of the planner and its front ends.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/text/language"

	"pose-planner/internal/geometry"
	"pose-planner/internal/logging"
	"pose-planner/internal/planner"
)

// Config is the full set of options. Files use the json tag names.
type Config struct {
	TurnRadius    float64       `json:"turn_radius"`
	RunwayLength  float64       `json:"runway_length"`
	StepSize      float64       `json:"step_size"`
	FrameInterval time.Duration `json:"frame_interval"`
	Language      string        `json:"language"`
	ViewLimit     float64       `json:"view_limit"`
	MaxSamples    int           `json:"max_samples"`
	GIFMaxFrames  int           `json:"gif_max_frames"`
	LogFile       string        `json:"log_file"`
	LogLevel      string        `json:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TurnRadius:    4.5,
		RunwayLength:  5,
		StepSize:      0.05,
		FrameInterval: 10 * time.Millisecond,
		Language:      "en",
		ViewLimit:     20,
		MaxSamples:    planner.DefaultMaxSamples,
		GIFMaxFrames:  150,
		LogLevel:      "info",
	}
}

// Load reads a JSON file and applies it over the defaults. Keys that match no
// option are an error. Durations may be written as strings such as "25ms".
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	var attrs map[string]interface{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Apply(attrs); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Apply decodes attrs over c. Fields absent from attrs keep their values.
func (c *Config) Apply(attrs map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      c,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attrs)
}

// Validate reports every invalid option.
func (c Config) Validate() error {
	var errs error
	positive := func(name string, v float64) {
		if !geometry.IsFinite(v) || v <= 0 {
			errs = multierr.Append(errs, errors.Errorf("%s must be > 0, got %g", name, v))
		}
	}
	positive("turn_radius", c.TurnRadius)
	positive("step_size", c.StepSize)
	positive("view_limit", c.ViewLimit)
	if !geometry.IsFinite(c.RunwayLength) || c.RunwayLength < 0 {
		errs = multierr.Append(errs, errors.Errorf("runway_length must be >= 0, got %g", c.RunwayLength))
	}
	if c.FrameInterval <= 0 {
		errs = multierr.Append(errs, errors.Errorf("frame_interval must be > 0, got %s", c.FrameInterval))
	}
	if c.MaxSamples < 2 {
		errs = multierr.Append(errs, errors.Errorf("max_samples must be >= 2, got %d", c.MaxSamples))
	}
	if c.GIFMaxFrames < 2 {
		errs = multierr.Append(errs, errors.Errorf("gif_max_frames must be >= 2, got %d", c.GIFMaxFrames))
	}
	if _, err := language.Parse(c.Language); err != nil {
		errs = multierr.Append(errs, errors.Wrapf(err, "language %q", c.Language))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Params returns the planning constants.
func (c Config) Params() planner.Params {
	return planner.Params{
		TurnRadius:   c.TurnRadius,
		RunwayLength: c.RunwayLength,
		StepSize:     c.StepSize,
	}
}
