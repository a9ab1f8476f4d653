package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// syncFile is the optional YAML overlay for the sync job, e.g.
//
//	sync:
//	  region_hint: "Davis, CA"
//	  place_type: bar
//	  places_rps: 5
//	  places_timeout: 8s
type syncFile struct {
	Sync struct {
		RegionHint    *string `yaml:"region_hint"`
		PlaceType     *string `yaml:"place_type"`
		PlacesRPS     *int    `yaml:"places_rps"`
		PlacesTimeout *string `yaml:"places_timeout"`
	} `yaml:"sync"`
}

// ApplySyncFile overrides sync settings present in the file. Keys left out
// keep their env/default value.
func (c *Config) ApplySyncFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var f syncFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	s := f.Sync
	if s.RegionHint != nil {
		c.RegionHint = strings.TrimSpace(*s.RegionHint)
	}
	if s.PlaceType != nil {
		c.PlaceType = strings.TrimSpace(*s.PlaceType)
	}
	if s.PlacesRPS != nil {
		c.PlacesRPS = *s.PlacesRPS
	}
	if s.PlacesTimeout != nil {
		d, err := time.ParseDuration(*s.PlacesTimeout)
		if err != nil {
			return fmt.Errorf("places_timeout: %w", err)
		}
		c.PlacesTimeout = d
	}
	return nil
}
