package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config drives one render.
type Config struct {
	// Input is the WAV file to process. A test tone is generated when empty.
	Input       string  `yaml:"input"`
	Output      string  `yaml:"output"`
	ToneSeconds float64 `yaml:"tone_seconds"`
	ToneLevel   float64 `yaml:"tone_level"`

	SampleRate float64 `yaml:"sample_rate"`
	BlockSize  int     `yaml:"block_size"`
	SampleSize int     `yaml:"sample_size"`
	// Realtime paces the blocks at the speed of the audio.
	Realtime        bool          `yaml:"realtime"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	State  StateConfig  `yaml:"state"`
	OSC    OSCConfig    `yaml:"osc"`
	Params ParamsConfig `yaml:"params"`

	LogLevel string `yaml:"log_level"`
}

// StateConfig names the files holding the saved states. Existing files are
// loaded before the render and all are written after it.
type StateConfig struct {
	Processor  string `yaml:"processor"`
	Controller string `yaml:"controller"`
}

// OSCConfig configures the remote surface. It is disabled when Listen is
// empty.
type OSCConfig struct {
	Listen string `yaml:"listen"`
	Reply  string `yaml:"reply"`
}

// ParamsConfig sets parameters before the render, as user edits.
type ParamsConfig struct {
	Bypass    *bool    `yaml:"bypass"`
	Link      *bool    `yaml:"link"`
	LeftGain  *float64 `yaml:"left_gain"`
	RightGain *float64 `yaml:"right_gain"`
	Message   string   `yaml:"message"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Output:          "out.wav",
		ToneSeconds:     2,
		ToneLevel:       0.5,
		SampleRate:      44100,
		BlockSize:       512,
		SampleSize:      32,
		RefreshInterval: 200 * time.Millisecond,
		LogLevel:        "info",
	}
}

// LoadConfig reads a YAML configuration over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("couldn't parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample_rate %v", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("invalid block_size %d", c.BlockSize)
	}
	if c.SampleSize != 32 && c.SampleSize != 64 {
		return fmt.Errorf("invalid sample_size %d, expected 32 or 64", c.SampleSize)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("invalid refresh_interval %v", c.RefreshInterval)
	}
	if c.Input == "" && c.ToneSeconds <= 0 {
		return fmt.Errorf("no input and invalid tone_seconds %v", c.ToneSeconds)
	}
	for name, v := range map[string]*float64{"left_gain": c.Params.LeftGain, "right_gain": c.Params.RightGain} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s %v outside [0,1]", name, *v)
		}
	}
	return nil
}
