package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gampnico/scintillometry-tools/internal/domain"
)

type stationsFile struct {
	Stations []domain.Station `yaml:"stations"`
}

// LoadStations reads the YAML station registry and returns stations keyed by
// code. Every entry is validated; duplicate codes are rejected.
func LoadStations(path string) (map[string]domain.Station, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading station registry: %w", err)
	}
	return ParseStations(raw)
}

// ParseStations parses a YAML station registry document.
func ParseStations(raw []byte) (map[string]domain.Station, error) {
	var file stationsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing station registry: %w", err)
	}
	if len(file.Stations) == 0 {
		return nil, fmt.Errorf("station registry contains no stations")
	}

	stations := make(map[string]domain.Station, len(file.Stations))
	for _, station := range file.Stations {
		if err := station.Validate(); err != nil {
			return nil, fmt.Errorf("station %q: %w", station.Code, err)
		}
		if _, ok := stations[station.Code]; ok {
			return nil, fmt.Errorf("duplicate station code %q", station.Code)
		}
		stations[station.Code] = station
	}
	return stations, nil
}
