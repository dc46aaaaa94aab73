package models

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// DemoInfo describes how a demo type is presented to the prospect
type DemoInfo struct {
	Title       string        `yaml:"title" json:"title"`
	Description string        `yaml:"description" json:"description"`
	VideoURL    string        `yaml:"video_url,omitempty" json:"video_url,omitempty"`
	Duration    time.Duration `yaml:"duration,omitempty" json:"duration,omitempty"`
	Highlights  []string      `yaml:"highlights,omitempty" json:"highlights,omitempty"`
}

// Catalog holds the enumerated option sets the wizard offers
type Catalog struct {
	Roles        []string              `yaml:"roles" json:"roles"`
	TeamSizes    []string              `yaml:"team_sizes" json:"team_sizes"`
	TimeSlots    []string              `yaml:"time_slots" json:"time_slots"`
	LiveDuration time.Duration         `yaml:"live_duration" json:"live_duration"`
	Demos        map[DemoType]DemoInfo `yaml:"demos" json:"demos"`
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog embedded in the binary
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ParseCatalog decodes a YAML catalog and checks every option set is populated
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Roles) == 0 || len(c.TeamSizes) == 0 || len(c.TimeSlots) == 0 {
		return nil, fmt.Errorf("catalog needs roles, team_sizes and time_slots")
	}
	for _, t := range []DemoType{DemoLive, DemoVideo, DemoAssessment} {
		if _, ok := c.Demos[t]; !ok {
			return nil, fmt.Errorf("catalog has no entry for demo type %q", t)
		}
	}
	return &c, nil
}

// Options returns the named option set, or nil when the set is unknown
func (c *Catalog) Options(set string) []string {
	switch set {
	case "roles":
		return c.Roles
	case "team_sizes":
		return c.TeamSizes
	case "time_slots":
		return c.TimeSlots
	}
	return nil
}

func (c *Catalog) Contains(set, value string) bool {
	return slices.Contains(c.Options(set), value)
}

// Demo returns presentation info for t
func (c *Catalog) Demo(t DemoType) DemoInfo {
	return c.Demos[t]
}
