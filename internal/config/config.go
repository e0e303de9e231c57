// Package config loads server settings from a YAML file with sane defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
	// FrontendHost restricts websocket upgrade origins; empty allows all.
	FrontendHost string `yaml:"frontend_host"`
	// MoveDelayMS pauses the reveal of a computer move. Cosmetic only.
	MoveDelayMS int `yaml:"move_delay_ms"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Addr:        ":8080",
		MoveDelayMS: 400,
	}
}

// Load reads a YAML config file. An empty path yields the defaults; a
// missing or malformed file is an error. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// MoveDelay returns the computer-move reveal delay as a duration.
func (c Config) MoveDelay() time.Duration {
	return time.Duration(c.MoveDelayMS) * time.Millisecond
}
