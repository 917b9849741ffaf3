// Package discovery implements link/mention promotion, budget-capped
// source registration, and expansion-query deduplication for the
// Discovery & Expansion phase (section 4.8): it turns outbound links and
// post mentions surfaced by a run into new candidate sources, and turns
// implied_queries carried on Tension/Need signals into new search-query
// sources for future runs.
package discovery

import (
	"strings"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// Budget caps the number of promotions a single run will emit for a
// category of discovery, so a high-volume source (a directory page
// linking hundreds of URLs, a bot account mentioning dozens of handles)
// cannot saturate the source queue in one pass.
type Budget struct {
	MaxLinksPerRun    int
	MaxMentionsPerRun int
	MaxQueriesPerRun  int
}

// DefaultBudget matches the per-run caps used in production: generous
// enough that a legitimate community hub's link list isn't starved, tight
// enough that a link farm can't flood a single run.
func DefaultBudget() Budget {
	return Budget{MaxLinksPerRun: 40, MaxMentionsPerRun: 20, MaxQueriesPerRun: 10}
}

// Promoter accumulates promotions across a run, applying Budget caps as
// it goes, and exposes the resulting events once the run's discovery pass
// is done.
type Promoter struct {
	budget Budget

	seenLinks   map[string]struct{}
	seenHandles map[string]struct{}

	linkEvents   []events.LinkPromotedEvent
	sourceEvents []events.SourceRegisteredEvent
	queryCount   int
}

// NewPromoter builds a Promoter for a single run.
func NewPromoter(budget Budget) *Promoter {
	return &Promoter{
		budget:      budget,
		seenLinks:   make(map[string]struct{}),
		seenHandles: make(map[string]struct{}),
	}
}

// PromoteLink records an outbound link as a candidate new source, after
// canonicalization and filtering. Returns false if the link was dropped
// (filtered, duplicate, or over budget).
func (p *Promoter) PromoteLink(runID uuid.UUID, rawURL string) bool {
	if len(p.linkEvents) >= p.budget.MaxLinksPerRun {
		return false
	}
	canon, ok := CanonicalizeLink(rawURL)
	if !ok {
		return false
	}
	if _, dup := p.seenLinks[canon]; dup {
		return false
	}
	p.seenLinks[canon] = struct{}{}
	p.linkEvents = append(p.linkEvents, events.NewLinkPromotedEvent(runID, canon, "LinkFollow"))
	return true
}

// PromoteMention records a (platform, handle) mention as a new source
// registration, per section 4.8's SourceRegistered{discovery_method:
// SocialGraphFollow, weight: 0.3, source_role: Mixed}.
func (p *Promoter) PromoteMention(runID uuid.UUID, platform, handle string) bool {
	if len(p.sourceEvents) >= p.budget.MaxMentionsPerRun {
		return false
	}
	key := strings.ToLower(platform) + ":" + strings.ToLower(handle)
	if _, dup := p.seenHandles[key]; dup {
		return false
	}
	p.seenHandles[key] = struct{}{}
	url := CanonicalProfileURL(platform, handle)
	p.sourceEvents = append(p.sourceEvents, events.NewSourceRegisteredEvent(
		runID, uuid.New(), url, 0.3, "Mixed", "SocialGraphFollow",
	))
	return true
}

// PromoteQuery registers a deduplicated implied_queries string as a new
// search-query source, per section 4.8's end-of-run query promotion.
// Search-query sources are keyed by a "query:" URL scheme rather than a
// fetchable address; wiring the fetch layer to recognize that scheme and
// issue a search-API call instead of an HTTP GET is tracked in DESIGN.md
// as a known gap, same as synthesis's own "response-search:"/
// "gathering-search:" synthetic URLs.
func (p *Promoter) PromoteQuery(runID uuid.UUID, query string) bool {
	if p.queryCount >= p.budget.MaxQueriesPerRun {
		return false
	}
	key := "query:" + strings.ToLower(strings.TrimSpace(query))
	if _, dup := p.seenHandles[key]; dup {
		return false
	}
	p.seenHandles[key] = struct{}{}
	p.queryCount++
	p.sourceEvents = append(p.sourceEvents, events.NewSourceRegisteredEvent(
		runID, uuid.New(), key, 0.4, "Search", "QueryExpansion",
	))
	return true
}

// LinkEvents returns the LinkPromoted events accumulated this run.
func (p *Promoter) LinkEvents() []events.LinkPromotedEvent { return p.linkEvents }

// SourceEvents returns the SourceRegistered events accumulated this run
// from mention promotion and expansion queries.
func (p *Promoter) SourceEvents() []events.SourceRegisteredEvent { return p.sourceEvents }
