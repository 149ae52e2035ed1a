// Package hostconfig loads the YAML configuration file a uxnhost run reads
// at startup: screen size, the sandboxed filesystem root, which log
// components are enabled, and the host key-to-button map.
package hostconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of a uxnhost config file.
type Config struct {
	Screen ScreenConfig `yaml:"screen"`
	FS     FSConfig     `yaml:"filesystem"`
	Log    LogConfig    `yaml:"log"`
	KeyMap map[string]string `yaml:"keymap"`
}

// ScreenConfig controls the initial window/raster size.
type ScreenConfig struct {
	Width  uint16 `yaml:"width"`
	Height uint16 `yaml:"height"`
	Zoom   int    `yaml:"zoom"`
}

// FSConfig controls the sandboxed filesystem device's root directory.
type FSConfig struct {
	Root string `yaml:"root"`
}

// LogConfig lists which hostlog components to enable and at what level.
type LogConfig struct {
	Level      string   `yaml:"level"`
	Components []string `yaml:"components"`
}

// Default returns the configuration a bare `uxnhost run rom.rom` uses when
// no config file is given.
func Default() Config {
	return Config{
		Screen: ScreenConfig{Width: 0x100, Height: 0x100, Zoom: 1},
		FS:     FSConfig{Root: "."},
		Log:    LogConfig{Level: "warn"},
	}
}

// Load reads and parses a YAML config file at path, filling any field the
// file omits with Default's value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("hostconfig: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("hostconfig: parsing %s: %w", path, err)
	}
	if cfg.Screen.Width == 0 {
		cfg.Screen.Width = Default().Screen.Width
	}
	if cfg.Screen.Height == 0 {
		cfg.Screen.Height = Default().Screen.Height
	}
	if cfg.FS.Root == "" {
		cfg.FS.Root = Default().FS.Root
	}
	return cfg, nil
}
