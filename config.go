package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DataDirectory string `toml:"data_directory"`
	Autosave      bool   `toml:"autosave"`
	Confirmations bool   `toml:"confirmations"`
	DefaultShape  string `toml:"default_shape"`
}

func defaultConfig() *Config {
	return &Config{
		Autosave:      true,
		Confirmations: true,
		DefaultShape:  string(ShapeRectangle),
	}
}

func configPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nodalrc.toml")
}

// loadConfig reads ~/.nodalrc.toml over the defaults. A missing or broken
// file just means defaults.
func loadConfig() *Config {
	cfg := defaultConfig()

	path := configPath()
	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	_ = toml.Unmarshal(data, cfg)

	if _, ok := shapeTable[ShapeKind(cfg.DefaultShape)]; !ok {
		cfg.DefaultShape = string(ShapeRectangle)
	}
	return cfg
}

// DataDir resolves where charts and the session log live.
func (c *Config) DataDir() string {
	if c.DataDirectory != "" {
		return c.DataDirectory
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nodal"
	}
	return filepath.Join(home, ".nodal")
}
