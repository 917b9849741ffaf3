package events

import (
	"time"

	"github.com/google/uuid"
)

// GeoPoint is a latitude/longitude pair with an optional precision
// classification, per spec section 3.2/4.6.
type GeoPoint struct {
	Lat       float64
	Lng       float64
	Precision LocationPrecision
}

// LocationPrecision classifies how exact an about_location is.
type LocationPrecision string

const (
	PrecisionExact        LocationPrecision = "exact"
	PrecisionNeighborhood LocationPrecision = "neighborhood"
	PrecisionCity         LocationPrecision = "city"
	PrecisionApproximate  LocationPrecision = "approximate"
)

// NodeType enumerates the five signal types.
type NodeType string

const (
	NodeGathering NodeType = "Gathering"
	NodeAid       NodeType = "Aid"
	NodeNeed      NodeType = "Need"
	NodeNotice    NodeType = "Notice"
	NodeTension   NodeType = "Tension"
)

// ReviewStatus is the unified lifecycle status for signals and situations.
type ReviewStatus string

const (
	StatusDraft       ReviewStatus = "Draft"
	StatusPublished   ReviewStatus = "Published"
	StatusQuarantined ReviewStatus = "Quarantined"
	StatusRejected    ReviewStatus = "Rejected"
)

// Phase enumerates run phases per the aggregate's state machine.
type Phase string

const (
	PhaseScheduling    Phase = "Scheduling"
	PhaseTensionPhase  Phase = "TensionPhase"
	PhaseResponsePhase Phase = "ResponsePhase"
	PhaseSynthesis     Phase = "Synthesis"
	PhaseEnrichment    Phase = "Enrichment"
	PhaseMetrics       Phase = "Metrics"
	PhaseExpansion     Phase = "Expansion"
	PhaseComplete      Phase = "Complete"
)

// CandidateSignal is the extractor's output shape for one candidate node,
// per spec section 4.6, prior to dedup and graph projection.
type CandidateSignal struct {
	NodeType           NodeType
	Title              string
	Summary            string
	AboutLocation      *GeoPoint
	AboutLocationName  string
	FromLocation       *GeoPoint
	MentionedActors    []string
	AuthorActor        string
	SourceLinks        []string
	StartsAt           *time.Time
	EndsAt             *time.Time
	Schedule           string
	IsFirsthand        bool
	ResourcesRequired  []ResourceRef
	ResourcesOffered   []ResourceRef
	SignalTags         []string
	ImpliedQueries     []string
	SelfExplanatory    bool
	Confidence         float32
	Embedding          []float32
	ContentHash        string
	GatheringType      string
	Severity           string
	SourceAuthority    string
	Category           string
	CauseHeat          float32
}

// ResourceRef names a capability-taxonomy node with extraction confidence.
type ResourceRef struct {
	Slug       string
	Label      string
	Confidence float32
	Quantity   string
	Context    string
}

// Verdict is the dedup decider's output, per spec section 4.7.
type Verdict string

const (
	VerdictCreate      Verdict = "Create"
	VerdictCorroborate Verdict = "Corroborate"
	VerdictRefresh     Verdict = "Refresh"
)

// --- Run lifecycle -----------------------------------------------------

type RunStartedEvent struct {
	base
	Region RegionRef
}

// RegionRef identifies the region a run is scoped to.
type RegionRef struct {
	Slug   string
	Lat    float64
	Lng    float64
	Radius float64
}

func NewRunStartedEvent(runID uuid.UUID, region RegionRef) RunStartedEvent {
	return RunStartedEvent{base: newBase(runID), Region: region}
}

type RunCompletedEvent struct {
	base
	Stats RunStats
}

// RunStats accumulates run-level counters for the completion summary.
type RunStats struct {
	SourcesScheduled  int
	SignalsExtracted  int
	NodesCreated      int
	NodesCorroborated int
	NodesRefreshed    int
	FetchFailures     int
	Quarantines       int
	SituationsFormed  int
}

func NewRunCompletedEvent(runID uuid.UUID, stats RunStats) RunCompletedEvent {
	return RunCompletedEvent{base: newBase(runID), Stats: stats}
}

type RunCancelledEvent struct {
	base
	Reason string
}

func NewRunCancelledEvent(runID uuid.UUID, reason string) RunCancelledEvent {
	return RunCancelledEvent{base: newBase(runID), Reason: reason}
}

// --- Scheduling & fetch --------------------------------------------------

type SourcesScheduledEvent struct {
	base
	Phase   Phase
	Sources []uuid.UUID
}

func NewSourcesScheduledEvent(runID uuid.UUID, phase Phase, sources []uuid.UUID) SourcesScheduledEvent {
	return SourcesScheduledEvent{base: newBase(runID), Phase: phase, Sources: sources}
}

type SourceQueuedEvent struct {
	base
	SourceID uuid.UUID
	URL      string
}

func NewSourceQueuedEvent(runID uuid.UUID, sourceID uuid.UUID, url string) SourceQueuedEvent {
	return SourceQueuedEvent{base: newBase(runID), SourceID: sourceID, URL: url}
}

type ContentFetchedEvent struct {
	base
	SourceID    uuid.UUID
	URL         string
	ContentHash string
	ContentType string
}

func NewContentFetchedEvent(runID, sourceID uuid.UUID, url, hash, contentType string) ContentFetchedEvent {
	return ContentFetchedEvent{base: newBase(runID), SourceID: sourceID, URL: url, ContentHash: hash, ContentType: contentType}
}

type ContentUnchangedEvent struct {
	base
	SourceID uuid.UUID
	URL      string
}

func NewContentUnchangedEvent(runID, sourceID uuid.UUID, url string) ContentUnchangedEvent {
	return ContentUnchangedEvent{base: newBase(runID), SourceID: sourceID, URL: url}
}

type ContentFetchFailedEvent struct {
	base
	SourceID uuid.UUID
	URL      string
	Kind     string // TransientFetch | PermanentFetch
	Reason   string
}

func NewContentFetchFailedEvent(runID, sourceID uuid.UUID, url, kind, reason string) ContentFetchFailedEvent {
	return ContentFetchFailedEvent{base: newBase(runID), SourceID: sourceID, URL: url, Kind: kind, Reason: reason}
}

type UrlProcessedEvent struct {
	base
	SourceID uuid.UUID
	URL      string
}

func NewUrlProcessedEvent(runID, sourceID uuid.UUID, url string) UrlProcessedEvent {
	return UrlProcessedEvent{base: newBase(runID), SourceID: sourceID, URL: url}
}

type PhaseCompletedEvent struct {
	base
	Phase Phase
}

func NewPhaseCompletedEvent(runID uuid.UUID, phase Phase) PhaseCompletedEvent {
	return PhaseCompletedEvent{base: newBase(runID), Phase: phase}
}

// --- Extraction ----------------------------------------------------------

type SignalsExtractedEvent struct {
	base
	SourceID uuid.UUID
	URL      string
	Signals  []CandidateSignal
}

func NewSignalsExtractedEvent(runID, sourceID uuid.UUID, url string, signals []CandidateSignal) SignalsExtractedEvent {
	return SignalsExtractedEvent{base: newBase(runID), SourceID: sourceID, URL: url, Signals: signals}
}

type ExtractionDroppedNoDateEvent struct {
	base
	SourceID uuid.UUID
	URL      string
	Title    string
}

func NewExtractionDroppedNoDateEvent(runID, sourceID uuid.UUID, url, title string) ExtractionDroppedNoDateEvent {
	return ExtractionDroppedNoDateEvent{base: newBase(runID), SourceID: sourceID, URL: url, Title: title}
}

// --- Discovery (*Discovered) ---------------------------------------------

// DiscoveredBase is the field set shared by every *Discovered event, per
// spec section 3.2's common signal fields. Exported so extractor/discovery
// code outside this package can construct *Discovered events directly.
type DiscoveredBase struct {
	ID                uuid.UUID
	Title             string
	Summary           string
	SourceURL         string
	AboutLocation     *GeoPoint
	AboutLocationName string
	FromLocation      *GeoPoint
	StartsAt          *time.Time
	EndsAt            *time.Time
	Schedule          string
	Confidence        float32
	ContentHash       string
	Embedding         []float32
}

type GatheringDiscoveredEvent struct {
	base
	DiscoveredBase
	GatheringType string
}

type AidDiscoveredEvent struct {
	base
	DiscoveredBase
}

type NeedDiscoveredEvent struct {
	base
	DiscoveredBase
}

type NoticeDiscoveredEvent struct {
	base
	DiscoveredBase
	Severity        string
	SourceAuthority string
	Category        string
}

type TensionDiscoveredEvent struct {
	base
	DiscoveredBase
	CauseHeat float32
}

func NewGatheringDiscoveredEvent(runID uuid.UUID, d DiscoveredBase, gatheringType string) GatheringDiscoveredEvent {
	return GatheringDiscoveredEvent{base: newBase(runID), DiscoveredBase: d, GatheringType: gatheringType}
}

func NewAidDiscoveredEvent(runID uuid.UUID, d DiscoveredBase) AidDiscoveredEvent {
	return AidDiscoveredEvent{base: newBase(runID), DiscoveredBase: d}
}

func NewNeedDiscoveredEvent(runID uuid.UUID, d DiscoveredBase) NeedDiscoveredEvent {
	return NeedDiscoveredEvent{base: newBase(runID), DiscoveredBase: d}
}

func NewNoticeDiscoveredEvent(runID uuid.UUID, d DiscoveredBase, severity, authority, category string) NoticeDiscoveredEvent {
	return NoticeDiscoveredEvent{base: newBase(runID), DiscoveredBase: d, Severity: severity, SourceAuthority: authority, Category: category}
}

func NewTensionDiscoveredEvent(runID uuid.UUID, d DiscoveredBase, causeHeat float32) TensionDiscoveredEvent {
	return TensionDiscoveredEvent{base: newBase(runID), DiscoveredBase: d, CauseHeat: causeHeat}
}

// --- Dedup / corroboration -----------------------------------------------

type DedupVerdictReachedEvent struct {
	base
	CandidateID uuid.UUID
	Verdict     Verdict
	ExistingID  *uuid.UUID
	ExistingURL string
}

func NewDedupVerdictReachedEvent(runID, candidateID uuid.UUID, verdict Verdict, existingID *uuid.UUID, existingURL string) DedupVerdictReachedEvent {
	return DedupVerdictReachedEvent{base: newBase(runID), CandidateID: candidateID, Verdict: verdict, ExistingID: existingID, ExistingURL: existingURL}
}

type NodeCreatedEvent struct {
	base
	NodeID   uuid.UUID
	NodeType NodeType
}

func NewNodeCreatedEvent(runID, nodeID uuid.UUID, nodeType NodeType) NodeCreatedEvent {
	return NodeCreatedEvent{base: newBase(runID), NodeID: nodeID, NodeType: nodeType}
}

type NodeCorroboratedEvent struct {
	base
	NodeID      uuid.UUID
	CitationURL string
}

func NewNodeCorroboratedEvent(runID, nodeID uuid.UUID, citationURL string) NodeCorroboratedEvent {
	return NodeCorroboratedEvent{base: newBase(runID), NodeID: nodeID, CitationURL: citationURL}
}

type NodeRefreshedEvent struct {
	base
	NodeID uuid.UUID
}

func NewNodeRefreshedEvent(runID, nodeID uuid.UUID) NodeRefreshedEvent {
	return NodeRefreshedEvent{base: newBase(runID), NodeID: nodeID}
}

type ObservationCorroboratedEvent struct {
	base
	NodeID      uuid.UUID
	CitationURL string
	ContentHash string
}

func NewObservationCorroboratedEvent(runID, nodeID uuid.UUID, citationURL, hash string) ObservationCorroboratedEvent {
	return ObservationCorroboratedEvent{base: newBase(runID), NodeID: nodeID, CitationURL: citationURL, ContentHash: hash}
}

type CorroborationScoredEvent struct {
	base
	NodeID          uuid.UUID
	SourceDiversity int
	Similarity      float32
}

func NewCorroborationScoredEvent(runID, nodeID uuid.UUID, diversity int, similarity float32) CorroborationScoredEvent {
	return CorroborationScoredEvent{base: newBase(runID), NodeID: nodeID, SourceDiversity: diversity, Similarity: similarity}
}

type ConfidenceScoredEvent struct {
	base
	NodeID     uuid.UUID
	Confidence float32
}

func NewConfidenceScoredEvent(runID, nodeID uuid.UUID, confidence float32) ConfidenceScoredEvent {
	return ConfidenceScoredEvent{base: newBase(runID), NodeID: nodeID, Confidence: confidence}
}

type FreshnessConfirmedEvent struct {
	base
	NodeID          uuid.UUID
	ConfirmedActive time.Time
}

func NewFreshnessConfirmedEvent(runID, nodeID uuid.UUID, at time.Time) FreshnessConfirmedEvent {
	return FreshnessConfirmedEvent{base: newBase(runID), NodeID: nodeID, ConfirmedActive: at}
}

type EntityExpiredEvent struct {
	base
	NodeID uuid.UUID
}

func NewEntityExpiredEvent(runID, nodeID uuid.UUID) EntityExpiredEvent {
	return EntityExpiredEvent{base: newBase(runID), NodeID: nodeID}
}

type EntityPurgedEvent struct {
	base
	NodeID uuid.UUID
}

func NewEntityPurgedEvent(runID, nodeID uuid.UUID) EntityPurgedEvent {
	return EntityPurgedEvent{base: newBase(runID), NodeID: nodeID}
}

// --- Source / actor / resource / place / citation ------------------------

type SourceRegisteredEvent struct {
	base
	SourceID        uuid.UUID
	URL             string
	Weight          float32
	SourceRole      string
	DiscoveryMethod string
}

func NewSourceRegisteredEvent(runID, sourceID uuid.UUID, url string, weight float32, role, method string) SourceRegisteredEvent {
	return SourceRegisteredEvent{base: newBase(runID), SourceID: sourceID, URL: url, Weight: weight, SourceRole: role, DiscoveryMethod: method}
}

type SourceChangedEvent struct {
	base
	SourceID uuid.UUID
	Fields   map[string]any
}

func NewSourceChangedEvent(runID, sourceID uuid.UUID, fields map[string]any) SourceChangedEvent {
	return SourceChangedEvent{base: newBase(runID), SourceID: sourceID, Fields: fields}
}

type SourceDeactivatedEvent struct {
	base
	SourceID uuid.UUID
	Reason   string
}

func NewSourceDeactivatedEvent(runID, sourceID uuid.UUID, reason string) SourceDeactivatedEvent {
	return SourceDeactivatedEvent{base: newBase(runID), SourceID: sourceID, Reason: reason}
}

type ActorIdentifiedEvent struct {
	base
	ActorID  uuid.UUID
	Name     string
	Location *GeoPoint
}

func NewActorIdentifiedEvent(runID, actorID uuid.UUID, name string, loc *GeoPoint) ActorIdentifiedEvent {
	return ActorIdentifiedEvent{base: newBase(runID), ActorID: actorID, Name: name, Location: loc}
}

type ActorLinkedToEntityEvent struct {
	base
	ActorID  uuid.UUID
	NodeID   uuid.UUID
	EdgeType string // AUTHORED_BY | MENTIONED_IN | ACTED_IN
}

// ActorMergedEvent folds DuplicateID's edges onto SurvivorID and removes
// DuplicateID, mirroring DuplicateTensionMergedEvent for the actor side
// of Enrichment's dedup pass.
type ActorMergedEvent struct {
	base
	DuplicateID uuid.UUID
	SurvivorID  uuid.UUID
}

func NewActorMergedEvent(runID, duplicateID, survivorID uuid.UUID) ActorMergedEvent {
	return ActorMergedEvent{base: newBase(runID), DuplicateID: duplicateID, SurvivorID: survivorID}
}

func NewActorLinkedToEntityEvent(runID, actorID, nodeID uuid.UUID, edgeType string) ActorLinkedToEntityEvent {
	return ActorLinkedToEntityEvent{base: newBase(runID), ActorID: actorID, NodeID: nodeID, EdgeType: edgeType}
}

type ResourceEdgeCreatedEvent struct {
	base
	NodeID       uuid.UUID
	ResourceSlug string
	EdgeType     string // REQUIRES | PREFERS | OFFERS
	Confidence   float32
	Quantity     string
}

func NewResourceEdgeCreatedEvent(runID, nodeID uuid.UUID, slug, edgeType string, confidence float32, quantity string) ResourceEdgeCreatedEvent {
	return ResourceEdgeCreatedEvent{base: newBase(runID), NodeID: nodeID, ResourceSlug: slug, EdgeType: edgeType, Confidence: confidence, Quantity: quantity}
}

type ResponseLinkedEvent struct {
	base
	ResponderID uuid.UUID
	TensionID   uuid.UUID
	Explanation string
}

func NewResponseLinkedEvent(runID, responderID, tensionID uuid.UUID, explanation string) ResponseLinkedEvent {
	return ResponseLinkedEvent{base: newBase(runID), ResponderID: responderID, TensionID: tensionID, Explanation: explanation}
}

type GravityLinkedEvent struct {
	base
	GatheringID   uuid.UUID
	TensionID     uuid.UUID
	GatheringType string
}

func NewGravityLinkedEvent(runID, gatheringID, tensionID uuid.UUID, gatheringType string) GravityLinkedEvent {
	return GravityLinkedEvent{base: newBase(runID), GatheringID: gatheringID, TensionID: tensionID, GatheringType: gatheringType}
}

type EvidenceLinkedEvent struct {
	base
	NodeID    uuid.UUID
	TensionID uuid.UUID
}

func NewEvidenceLinkedEvent(runID, nodeID, tensionID uuid.UUID) EvidenceLinkedEvent {
	return EvidenceLinkedEvent{base: newBase(runID), NodeID: nodeID, TensionID: tensionID}
}

type PlaceDiscoveredEvent struct {
	base
	Slug     string
	Name     string
	Location GeoPoint
}

func NewPlaceDiscoveredEvent(runID uuid.UUID, slug, name string, loc GeoPoint) PlaceDiscoveredEvent {
	return PlaceDiscoveredEvent{base: newBase(runID), Slug: slug, Name: name, Location: loc}
}

type GathersAtPlaceLinkedEvent struct {
	base
	NodeID    uuid.UUID
	PlaceSlug string
}

func NewGathersAtPlaceLinkedEvent(runID, nodeID uuid.UUID, placeSlug string) GathersAtPlaceLinkedEvent {
	return GathersAtPlaceLinkedEvent{base: newBase(runID), NodeID: nodeID, PlaceSlug: placeSlug}
}

type CitationRecordedEvent struct {
	base
	URL         string
	ContentHash string
	Excerpt     string
	FetchedAt   time.Time
}

func NewCitationRecordedEvent(runID uuid.UUID, url, hash, excerpt string, fetchedAt time.Time) CitationRecordedEvent {
	return CitationRecordedEvent{base: newBase(runID), URL: url, ContentHash: hash, Excerpt: excerpt, FetchedAt: fetchedAt}
}

type LinkPromotedEvent struct {
	base
	URL             string
	DiscoveryMethod string
}

func NewLinkPromotedEvent(runID uuid.UUID, url, method string) LinkPromotedEvent {
	return LinkPromotedEvent{base: newBase(runID), URL: url, DiscoveryMethod: method}
}

// --- Synthesis -------------------------------------------------------------

type TensionLinkerOutcomeRecordedEvent struct {
	base
	SignalID uuid.UUID
	Outcome  string // linked | abandoned | no-match
}

func NewTensionLinkerOutcomeRecordedEvent(runID, signalID uuid.UUID, outcome string) TensionLinkerOutcomeRecordedEvent {
	return TensionLinkerOutcomeRecordedEvent{base: newBase(runID), SignalID: signalID, Outcome: outcome}
}

type GatheringScoutedEvent struct {
	base
	TensionID      uuid.UUID
	FoundGatherings bool
}

func NewGatheringScoutedEvent(runID, tensionID uuid.UUID, found bool) GatheringScoutedEvent {
	return GatheringScoutedEvent{base: newBase(runID), TensionID: tensionID, FoundGatherings: found}
}

type SituationIdentifiedEvent struct {
	base
	Slug           string
	Status         string // confirmed | echo | emerging
	Centroid       GeoPoint
	TypeDiversity  int
	EntityCount    int
	Temperature    float32
	SignalIDs      []uuid.UUID
}

func NewSituationIdentifiedEvent(runID uuid.UUID, slug, status string, centroid GeoPoint, typeDiversity, entityCount int, temperature float32, signalIDs []uuid.UUID) SituationIdentifiedEvent {
	return SituationIdentifiedEvent{base: newBase(runID), Slug: slug, Status: status, Centroid: centroid, TypeDiversity: typeDiversity, EntityCount: entityCount, Temperature: temperature, SignalIDs: signalIDs}
}

type SituationChangedEvent struct {
	base
	Slug   string
	Fields map[string]any
}

func NewSituationChangedEvent(runID uuid.UUID, slug string, fields map[string]any) SituationChangedEvent {
	return SituationChangedEvent{base: newBase(runID), Slug: slug, Fields: fields}
}

type DispatchCreatedEvent struct {
	base
	SituationSlug string
	Text          string
	CitedSignals  []uuid.UUID
}

func NewDispatchCreatedEvent(runID uuid.UUID, situationSlug, text string, citedSignals []uuid.UUID) DispatchCreatedEvent {
	return DispatchCreatedEvent{base: newBase(runID), SituationSlug: situationSlug, Text: text, CitedSignals: citedSignals}
}

type DuplicateTensionMergedEvent struct {
	base
	DuplicateID uuid.UUID
	SurvivorID  uuid.UUID
}

func NewDuplicateTensionMergedEvent(runID, duplicateID, survivorID uuid.UUID) DuplicateTensionMergedEvent {
	return DuplicateTensionMergedEvent{base: newBase(runID), DuplicateID: duplicateID, SurvivorID: survivorID}
}

// --- Lint ------------------------------------------------------------------

type LintVerdictRecordedEvent struct {
	base
	TargetID uuid.UUID
	Gate     int // 1 | 2
	Verdict  string
	Reason   string
	Changes  map[string]any
}

func NewLintVerdictRecordedEvent(runID, targetID uuid.UUID, gate int, verdict, reason string, changes map[string]any) LintVerdictRecordedEvent {
	return LintVerdictRecordedEvent{base: newBase(runID), TargetID: targetID, Gate: gate, Verdict: verdict, Reason: reason, Changes: changes}
}

type LintQuarantineIssuedEvent struct {
	base
	TargetID uuid.UUID
	Reason   string
}

func NewLintQuarantineIssuedEvent(runID, targetID uuid.UUID, reason string) LintQuarantineIssuedEvent {
	return LintQuarantineIssuedEvent{base: newBase(runID), TargetID: targetID, Reason: reason}
}

// --- Scheduler / metrics / expansion ----------------------------------------

type MetricsUpdatedEvent struct {
	base
	SourceID      uuid.UUID
	Weight        float32
	CadenceHours  float32
	Deactivated   bool
}

func NewMetricsUpdatedEvent(runID, sourceID uuid.UUID, weight, cadence float32, deactivated bool) MetricsUpdatedEvent {
	return MetricsUpdatedEvent{base: newBase(runID), SourceID: sourceID, Weight: weight, CadenceHours: cadence, Deactivated: deactivated}
}

type EnrichmentCompletedEvent struct {
	base
	ActorsMerged int
	PlacesCreated int
}

func NewEnrichmentCompletedEvent(runID uuid.UUID, actorsMerged, placesCreated int) EnrichmentCompletedEvent {
	return EnrichmentCompletedEvent{base: newBase(runID), ActorsMerged: actorsMerged, PlacesCreated: placesCreated}
}

type ExpansionCompletedEvent struct {
	base
	QueriesPromoted int
	SourcesPromoted int
}

func NewExpansionCompletedEvent(runID uuid.UUID, queriesPromoted, sourcesPromoted int) ExpansionCompletedEvent {
	return ExpansionCompletedEvent{base: newBase(runID), QueriesPromoted: queriesPromoted, SourcesPromoted: sourcesPromoted}
}
