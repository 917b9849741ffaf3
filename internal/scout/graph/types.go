// Package graph implements the knowledge graph store: a read-only Reader
// used by every handler except the projector, and an internal write-only
// projector that is the sole mutator, per section 9's compile-time
// single-writer requirement. The package intentionally exports no type
// with both read and write methods.
package graph

import (
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// Signal is a graph node of one of the five signal types (section 3.2).
type Signal struct {
	ID                  uuid.UUID
	NodeType            events.NodeType
	Title               string
	Summary             string
	SourceURL           string
	AboutLocation       *events.GeoPoint
	AboutLocationName   string
	FromLocation        *events.GeoPoint
	StartsAt            *time.Time
	EndsAt              *time.Time
	Schedule            string
	Confidence          float32
	Sensitivity         string
	ReviewStatus        events.ReviewStatus
	CreatedAt           time.Time
	LastConfirmedActive time.Time
	CorroborationCount  int
	SourceDiversity     int
	Embedding           []float32
	ContentHash         string
	Expired             bool
	ExpiredAt           *time.Time

	// Type-specific fields, populated only for the matching NodeType.
	GatheringType         string
	Severity              string
	SourceAuthority       string
	Category              string
	CauseHeat             float32
	CuriosityInvestigated string // "" | "abandoned"
	RetryCount            int
}

// Actor is a person, organization, or group (section 3.3). Deduplicated
// by exact name; fuzzy matching is a documented gap (see DESIGN.md).
type Actor struct {
	ID       uuid.UUID
	Name     string
	Location *events.GeoPoint
}

// Source is a URL or search specification (section 3.3).
type Source struct {
	ID                   uuid.UUID
	URL                  string
	Weight               float32
	CadenceHours         float32
	ConsecutiveEmptyRuns int
	LastScrapedAt        *time.Time
	SourceRole           string
	DiscoveryMethod      string
	Deactivated          bool
}

// Place is a named venue (section 3.3). Deduplicated by slug.
type Place struct {
	Slug           string
	Name           string
	Location       events.GeoPoint
	GatheringCount int
	TensionCount   int
}

// Resource is a capability-taxonomy node (section 3.3).
type Resource struct {
	Slug  string
	Label string
}

// Citation is a provenance record (section 3.3).
type Citation struct {
	URL         string
	ContentHash string
	Excerpt     string
	FetchedAt   time.Time
}

// Situation is a versioned narrative (section 3.3).
type Situation struct {
	Slug          string
	Status        string // Draft | Published | Quarantined | Rejected
	ArcState      string // confirmed | echo | emerging
	Centroid      events.GeoPoint
	Temperature   float32
	Clarity       float32
	TypeDiversity int
	EntityCount   int
	SignalIDs     []uuid.UUID
	Dispatches    []Dispatch
	Version       int
}

// Dispatch is an append-only, moment-in-time situation entry (section 3.3).
type Dispatch struct {
	Text         string
	CitedSignals []uuid.UUID
	CreatedAt    time.Time
}

// SimilarityMatch is the result of an embedding-similarity query, gated by
// a geo bounding box per section 4.7's spatial gate.
type SimilarityMatch struct {
	ExistingID  uuid.UUID
	Similarity  float32
	ExistingURL string
}

// BoundingBox is a region's geo bounds, used to gate cross-source dedup
// (section 4.7) and scope reads (section 6.4).
type BoundingBox struct {
	MinLat, MinLng, MaxLat, MaxLng float64
}

// Contains reports whether p falls within b.
func (b BoundingBox) Contains(p events.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}
