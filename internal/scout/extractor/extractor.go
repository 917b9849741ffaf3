// Package extractor implements the Signal Extractor (section 4.6): the
// LLM I/O boundary that turns fetched content into candidate signal
// nodes. It validates structured output against a JSON Schema, pulls a
// couple of loosely-typed fields out with gjson, and applies the
// extraction rules (location-explicit-only, neighborhood precision,
// actor-location fallback, first-hand filter, self-explanatory marking)
// that the LLM's raw output does not itself enforce.
package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

// Content is the fetched-content input to extraction, per section 4.6's
// "fetched content (markdown, post list, etc.) + source URL".
type Content struct {
	SourceURL   string
	ContentType string // page | post | feed | ...
	Text        string
	FetchedAt   time.Time

	// Trusted marks institutional/trusted-account sources, which skip the
	// first-hand filter per section 4.6.
	Trusted bool

	// KnownActorLocation is the author actor's last-known location, used
	// for the actor-location fallback rule when content carries no
	// explicit location.
	KnownActorLocation *events.GeoPoint
}

// Extractor issues one structured-extraction request per Content and
// converts the result into candidate signals plus drop notices.
type Extractor struct {
	llmExtractor *llm.Extractor
	schema       *jsonschema.Schema
}

// New builds an Extractor over a concrete llm.Extractor, compiling the
// extraction response schema once.
func New(llmExtractor *llm.Extractor) (*Extractor, error) {
	schema, err := compileResponseSchema()
	if err != nil {
		return nil, err
	}
	return &Extractor{llmExtractor: llmExtractor, schema: schema}, nil
}

// Result is Extract's output: zero or more candidate signals, plus any
// Gathering candidates dropped for lacking a date (section 6.5's
// LLMMalformed handling).
type Result struct {
	Signals []events.CandidateSignal
	Dropped []DroppedSignal
}

// DroppedSignal names a candidate the extractor chose not to emit.
type DroppedSignal struct {
	Title  string
	Reason string
}

// Extract runs one LLM completion over content, validates and parses the
// result, and applies extraction rules.
func (e *Extractor) Extract(ctx context.Context, content Content, profile region.Profile) (Result, error) {
	raw, err := e.llmExtractor.ExtractJSON(ctx, systemPrompt(profile), userPrompt(content), e.schema)
	if err != nil {
		return Result{}, fmt.Errorf("extractor: extract: %w", err)
	}

	contentHash := hashContent(content.Text)
	tagsByIndex := gjson.GetBytes(raw, "signals.#.signal_tags")
	queriesByIndex := gjson.GetBytes(raw, "signals.#.implied_queries")

	var parsed rawResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, fmt.Errorf("extractor: unmarshal response: %w", err)
	}

	result := Result{}
	for i, s := range parsed.Signals {
		candidate, drop := e.applyRules(s, content, profile, contentHash)
		if drop != nil {
			result.Dropped = append(result.Dropped, *drop)
			continue
		}
		// gjson pulls are redundant with the json.Unmarshal above for
		// well-formed responses; they exist so a signal_tags/
		// implied_queries field that fails strict unmarshaling (e.g. a
		// single string instead of an array) is still recovered loosely,
		// matching section 4.6's "loose" quality assertion for these two
		// fields.
		if len(candidate.SignalTags) == 0 && tagsByIndex.IsArray() && i < len(tagsByIndex.Array()) {
			candidate.SignalTags = stringsOf(tagsByIndex.Array()[i])
		}
		if len(candidate.ImpliedQueries) == 0 && queriesByIndex.IsArray() && i < len(queriesByIndex.Array()) {
			candidate.ImpliedQueries = stringsOf(queriesByIndex.Array()[i])
		}
		result.Signals = append(result.Signals, candidate)
	}
	return result, nil
}

type rawResponse struct {
	Signals []rawSignal `json:"signals"`
}

type rawSignal struct {
	NodeType            string           `json:"node_type"`
	Title               string           `json:"title"`
	Summary             string           `json:"summary"`
	AboutLocation       *rawGeoPoint     `json:"about_location"`
	AboutLocationName   string           `json:"about_location_name"`
	MentionedActors     []string         `json:"mentioned_actors"`
	AuthorActor         string           `json:"author_actor"`
	SourceLinks         []string         `json:"source_links"`
	StartsAt            *string          `json:"starts_at"`
	EndsAt              *string          `json:"ends_at"`
	Schedule            string           `json:"schedule"`
	IsFirsthand         bool             `json:"is_firsthand"`
	ResourcesRequired   []rawResourceRef `json:"resources_required"`
	ResourcesOffered    []rawResourceRef `json:"resources_offered"`
	SignalTags          []string         `json:"signal_tags"`
	ImpliedQueries      []string         `json:"implied_queries"`
	SelfExplanatory     bool             `json:"self_explanatory"`
	Confidence          float32          `json:"confidence"`
	GatheringType       string           `json:"gathering_type"`
	Severity            string           `json:"severity"`
	SourceAuthority     string           `json:"source_authority"`
	Category            string           `json:"category"`
	CauseHeat           float32          `json:"cause_heat"`
}

type rawGeoPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Precision string  `json:"precision"`
}

type rawResourceRef struct {
	Slug       string  `json:"slug"`
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Quantity   string  `json:"quantity"`
	Context    string  `json:"context"`
}

// applyRules converts one rawSignal into a CandidateSignal, applying the
// section 4.6 extraction rules. It returns a non-nil DroppedSignal
// instead of a candidate when the signal should not be emitted.
func (e *Extractor) applyRules(s rawSignal, content Content, profile region.Profile, contentHash string) (events.CandidateSignal, *DroppedSignal) {
	nodeType := events.NodeType(s.NodeType)

	// First-hand filter: applies to platform search/feed scraping only;
	// trusted accounts and institutional sources skip it.
	if !content.Trusted && content.ContentType != "page" && !s.IsFirsthand {
		return events.CandidateSignal{}, &DroppedSignal{Title: s.Title, Reason: "not firsthand"}
	}

	candidate := events.CandidateSignal{
		NodeType:          nodeType,
		Title:             s.Title,
		Summary:           s.Summary,
		AboutLocationName: s.AboutLocationName,
		MentionedActors:   s.MentionedActors,
		AuthorActor:       s.AuthorActor,
		SourceLinks:       s.SourceLinks,
		Schedule:          s.Schedule,
		IsFirsthand:       s.IsFirsthand,
		SignalTags:        s.SignalTags,
		ImpliedQueries:    s.ImpliedQueries,
		SelfExplanatory:   s.SelfExplanatory,
		Confidence:        s.Confidence,
		ContentHash:       contentHash,
		GatheringType:     s.GatheringType,
		Severity:          s.Severity,
		SourceAuthority:   s.SourceAuthority,
		Category:          s.Category,
		CauseHeat:         s.CauseHeat,
	}
	for _, r := range s.ResourcesRequired {
		candidate.ResourcesRequired = append(candidate.ResourcesRequired, events.ResourceRef{
			Slug: r.Slug, Label: r.Label, Confidence: r.Confidence, Quantity: r.Quantity, Context: r.Context,
		})
	}
	for _, r := range s.ResourcesOffered {
		candidate.ResourcesOffered = append(candidate.ResourcesOffered, events.ResourceRef{
			Slug: r.Slug, Label: r.Label, Confidence: r.Confidence, Quantity: r.Quantity, Context: r.Context,
		})
	}
	candidate.StartsAt = parseTimePtr(s.StartsAt)
	candidate.EndsAt = parseTimePtr(s.EndsAt)

	// Location: explicit only, never inferred from the scout's own
	// region. A neighborhood name within a known city resolves to
	// approximate coordinates at "neighborhood" precision.
	if s.AboutLocation != nil {
		precision := events.LocationPrecision(s.AboutLocation.Precision)
		if precision == "" {
			precision = events.PrecisionApproximate
		}
		candidate.AboutLocation = &events.GeoPoint{Lat: s.AboutLocation.Lat, Lng: s.AboutLocation.Lng, Precision: precision}
	} else if content.KnownActorLocation != nil {
		// Actor-location fallback: no content location, but the actor's
		// location is known. from_location is provenance; about_location
		// is set to it at write time.
		fallback := *content.KnownActorLocation
		candidate.FromLocation = &fallback
		candidate.AboutLocation = &fallback
	}
	// Otherwise: geographically neutral content. Location stays nil, no
	// fallback — this is the correct outcome, not an omission.

	// Gathering signals without a starts_at are dropped: an RSVP-able
	// event with no date is not actionable (section 6.5's LLMMalformed
	// handling).
	if (nodeType == events.NodeGathering) && candidate.StartsAt == nil {
		return events.CandidateSignal{}, &DroppedSignal{Title: s.Title, Reason: "no date"}
	}

	return candidate, nil
}

func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

func hashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func stringsOf(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	out := make([]string, 0, len(r.Array()))
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

func systemPrompt(profile region.Profile) string {
	return fmt.Sprintf(
		"You extract civic-activity signals (Gathering, Aid, Need, Notice, Tension) from fetched content for the %s region. "+
			"Only report a location when the content states one explicitly; never infer it from the region being scouted. "+
			"Respond with JSON only, matching the required schema.",
		profile.Name,
	)
}

func userPrompt(content Content) string {
	return fmt.Sprintf("Source: %s\nContent type: %s\n\n%s", content.SourceURL, content.ContentType, content.Text)
}
