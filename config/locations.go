package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/opsreport/core/model"
)

type locationsFile struct {
	Locations []model.Location `json:"locations" yaml:"locations"`
}

// LoadLocations loads the location catalogue from a JSON or YAML file.
func LoadLocations(path string) ([]model.Location, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	locs, err := DecodeLocations(f, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return locs, nil
}

// DecodeLocations reads a catalogue from r in the given format.
func DecodeLocations(r io.Reader, format string) ([]model.Location, error) {
	var lf locationsFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&lf); err != nil {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&lf); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return lf.Locations, nil
}
