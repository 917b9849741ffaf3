package graph

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// Reader is the read-only view of the graph store. Every handler except
// the projector holds only a Reader; there is no exported type in this
// package that exposes both read and write methods, so a handler simply
// cannot compile against a write method it was never given (section 9).
//
// The full system exposes roughly 40 read methods per section 6.4; this
// interface names the ones the Scout Engine's own handlers call directly
// (dedup, synthesis, discovery). Additional query methods can be added to
// MongoReader and this interface together without touching the projector.
type Reader interface {
	SignalByID(ctx context.Context, id uuid.UUID) (*Signal, error)
	SignalByTitleAndTypeFromURL(ctx context.Context, title string, nodeType events.NodeType, url string) (*Signal, error)
	SignalByTitleAndType(ctx context.Context, title string, nodeType events.NodeType) (*Signal, error)
	SimilarSignals(ctx context.Context, embedding []float32, nodeType events.NodeType, bbox BoundingBox, threshold float32, limit int) ([]SimilarityMatch, error)

	SourceByID(ctx context.Context, id uuid.UUID) (*Source, error)

	ActorByName(ctx context.Context, name string) (*Actor, error)
	// SimilarActors returns other actors whose name case/whitespace-folds
	// to the same key as name, for the Enrichment phase's actor-dedup
	// pass (section 4.2's documented fuzzy-matching gap stops at this:
	// exact folded-name collisions only, not semantic aliasing).
	SimilarActors(ctx context.Context, name string) ([]Actor, error)
	SourceByURL(ctx context.Context, url string) (*Source, error)
	SourcesDue(ctx context.Context, phase events.Phase, budget int) ([]Source, error)
	// ActiveSources returns every non-deactivated source, for the
	// scheduler's cold-tier/exploration tiers (section 4.11), which
	// sample across the full source population rather than a
	// phase-scoped due-list.
	ActiveSources(ctx context.Context) ([]Source, error)
	PlaceBySlug(ctx context.Context, slug string) (*Place, error)

	TensionsNear(ctx context.Context, center events.GeoPoint, radiusKM float64, limit int) ([]Signal, error)
	UnlinkedSignals(ctx context.Context, nodeTypes []events.NodeType, excludeAbandoned bool) ([]Signal, error)
	SignalsRespondingTo(ctx context.Context, tensionID uuid.UUID) ([]Signal, error)
	SignalsEvidencing(ctx context.Context, tensionID uuid.UUID) ([]Signal, error)
	GatheringsDrawnTo(ctx context.Context, tensionID uuid.UUID) ([]Signal, error)

	SituationBySlug(ctx context.Context, slug string) (*Situation, error)
	SituationsOverlapping(ctx context.Context, center events.GeoPoint, radiusKM float64) ([]Situation, error)

	// ContentHashProcessed reports whether (url, contentHash) has already
	// been projected in this run, for dedup decision order step 1.
	ContentHashProcessed(ctx context.Context, runID uuid.UUID, url, contentHash string) (bool, error)
}

// AdminQuery is the bounded, read-only interface for the admin
// investigation sandbox (section 4.10). It is distinct from Reader
// because its inputs come from a parsed, permission-restricted AST rather
// than typed Go calls, and it never returns write handles.
type AdminQuery interface {
	// Execute runs a pre-validated, depth-bounded read query and returns
	// rows as opaque maps; the caller (lint package) is responsible for
	// having restricted labels, relationships, and depth before this is
	// invoked. Execute itself performs no further policy checks — it
	// trusts its caller, the same way Reader trusts its callers to have
	// passed it only read-path queries.
	Execute(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// now is overridable in tests.
var now = time.Now
