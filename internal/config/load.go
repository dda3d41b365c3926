package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the outcome of a config load: where the file was looked for,
// the effective values, and any non-fatal complaints collected on the way.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves the config path, reads the file if present, and parses it
// over the built-in defaults. A missing file is not an error: the defaults
// apply and a warning records the path that was tried.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, found, err := readIfPresent(path)
	if err != nil {
		return Loaded{}, err
	}
	if !found {
		return Loaded{
			Path:     path,
			Config:   Default(),
			Warnings: []Warning{{Message: fmt.Sprintf("config file %q not found; using defaults", path)}},
		}, nil
	}

	cfg, warnings, err := Parse(content, Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return Loaded{Path: path, Config: cfg, Warnings: warnings, Exists: true}, nil
}

func readIfPresent(path string) (string, bool, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read config %q: %w", path, err)
	}
	return string(content), true, nil
}
