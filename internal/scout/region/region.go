// Package region loads the per-region profiles a run is scoped to: name,
// center point, bounding box, and the geo-term vocabulary HasGeoTerm
// matches against to recognize in-region place references.
package region

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// Profile describes one covered region.
type Profile struct {
	Slug     string   `yaml:"slug"`
	Name     string   `yaml:"name"`
	Center   Point    `yaml:"center"`
	BBox     Box      `yaml:"bbox"`
	GeoTerms []string `yaml:"geoTerms"`
}

// Point is a bare lat/lng pair, distinct from events.GeoPoint because a
// region's center carries no extraction-precision classification.
type Point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Box is a region's bounding box, used as the spatial gate in dedup
// (spec section 4.7) and as a $geoWithin filter on vector search.
type Box struct {
	MinLat float64 `yaml:"minLat"`
	MaxLat float64 `yaml:"maxLat"`
	MinLng float64 `yaml:"minLng"`
	MaxLng float64 `yaml:"maxLng"`
}

// Contains reports whether p falls within the box.
func (b Box) Contains(p events.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// RegionRef projects a Profile down to the RunStarted event's payload
// shape.
func (p Profile) RegionRef() events.RegionRef {
	return events.RegionRef{Slug: p.Slug, Lat: p.Center.Lat, Lng: p.Center.Lng}
}

// HasGeoTerm reports whether text mentions one of the region's configured
// place names, case-insensitively, as a plain substring match that needs
// no LLM call.
func (p Profile) HasGeoTerm(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range p.GeoTerms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Registry holds the set of region profiles a deployment covers, keyed
// by slug.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds a Registry from already-loaded profiles.
func NewRegistry(profiles ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		r.profiles[p.Slug] = p
	}
	return r
}

// LoadDir reads every *.yaml/*.yml file in dir as a Profile and returns a
// Registry. Each file holds exactly one profile, mirroring the
// integration test framework's one-scenario-per-file convention.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("region: read dir %s: %w", dir, err)
	}
	var profiles []Profile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("region: read %s: %w", path, err)
		}
		var p Profile
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("region: parse %s: %w", path, err)
		}
		if p.Slug == "" {
			return nil, fmt.Errorf("region: %s is missing a slug", path)
		}
		profiles = append(profiles, p)
	}
	return NewRegistry(profiles...), nil
}

// BySlug looks up a profile. ok is false when the slug is not configured.
func (r *Registry) BySlug(slug string) (Profile, bool) {
	p, ok := r.profiles[slug]
	return p, ok
}

// Slugs returns every configured region slug, in map iteration order
// (unsorted; no order is guaranteed).
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.profiles))
	for slug := range r.profiles {
		slugs = append(slugs, slug)
	}
	return slugs
}
