// Package events defines the Scout Engine's event union: the set of facts,
// decisions, and telemetry markers that flow through the event log and
// drive handler dispatch. Every event carries its sequence, run, causal
// parent, and stream via an embedded base; concrete payload fields
// live on the wrapping struct.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Stream tags which of the three layered event streams an event belongs
// to. World-only replay reconstructs the raw observation graph; world +
// decision replay reconstructs the curated view.
type Stream string

const (
	StreamWorld     Stream = "world"
	StreamDecision  Stream = "decision"
	StreamTelemetry Stream = "telemetry"
)

// Type is the stable string tag persisted alongside each event's payload.
// New variants are added by appending to this list; existing tags are
// never renumbered or removed, since the upcast layer depends on them.
type Type string

const (
	TypeRunStarted                  Type = "RunStarted"
	TypeRunCompleted                Type = "RunCompleted"
	TypeRunCancelled                Type = "RunCancelled"
	TypeSourcesScheduled             Type = "SourcesScheduled"
	TypeSourceQueued                 Type = "SourceQueued"
	TypeContentFetched               Type = "ContentFetched"
	TypeContentUnchanged             Type = "ContentUnchanged"
	TypeContentFetchFailed           Type = "ContentFetchFailed"
	TypeUrlProcessed                 Type = "UrlProcessed"
	TypePhaseCompleted               Type = "PhaseCompleted"
	TypeSignalsExtracted             Type = "SignalsExtracted"
	TypeExtractionDroppedNoDate      Type = "ExtractionDroppedNoDate"
	TypeGatheringDiscovered          Type = "GatheringDiscovered"
	TypeAidDiscovered                Type = "AidDiscovered"
	TypeNeedDiscovered               Type = "NeedDiscovered"
	TypeNoticeDiscovered             Type = "NoticeDiscovered"
	TypeTensionDiscovered            Type = "TensionDiscovered"
	TypeDedupVerdictReached          Type = "DedupVerdictReached"
	TypeNodeCreated                  Type = "NodeCreated"
	TypeNodeCorroborated             Type = "NodeCorroborated"
	TypeNodeRefreshed                Type = "NodeRefreshed"
	TypeObservationCorroborated      Type = "ObservationCorroborated"
	TypeCorroborationScored          Type = "CorroborationScored"
	TypeConfidenceScored             Type = "ConfidenceScored"
	TypeFreshnessConfirmed           Type = "FreshnessConfirmed"
	TypeEntityExpired                Type = "EntityExpired"
	TypeEntityPurged                 Type = "EntityPurged"
	TypeSourceRegistered             Type = "SourceRegistered"
	TypeSourceChanged                Type = "SourceChanged"
	TypeSourceDeactivated            Type = "SourceDeactivated"
	TypeActorIdentified              Type = "ActorIdentified"
	TypeActorLinkedToEntity          Type = "ActorLinkedToEntity"
	TypeActorMerged                  Type = "ActorMerged"
	TypeResourceEdgeCreated          Type = "ResourceEdgeCreated"
	TypeResponseLinked               Type = "ResponseLinked"
	TypeGravityLinked                Type = "GravityLinked"
	TypeEvidenceLinked               Type = "EvidenceLinked"
	TypePlaceDiscovered              Type = "PlaceDiscovered"
	TypeGathersAtPlaceLinked         Type = "GathersAtPlaceLinked"
	TypeCitationRecorded             Type = "CitationRecorded"
	TypeLinkPromoted                 Type = "LinkPromoted"
	TypeSituationIdentified          Type = "SituationIdentified"
	TypeSituationChanged             Type = "SituationChanged"
	TypeDispatchCreated              Type = "DispatchCreated"
	TypeDuplicateTensionMerged       Type = "DuplicateTensionMerged"
	TypeTensionLinkerOutcomeRecorded Type = "TensionLinkerOutcomeRecorded"
	TypeGatheringScouted             Type = "GatheringScouted"
	TypeLintQuarantineIssued         Type = "LintQuarantineIssued"
	TypeLintVerdictRecorded          Type = "LintVerdictRecorded"
	TypeMetricsUpdated               Type = "MetricsUpdated"
	TypeEnrichmentCompleted          Type = "EnrichmentCompleted"
	TypeExpansionCompleted           Type = "ExpansionCompleted"
)

// Event is the interface every concrete event type satisfies. Sequence and
// CausedBy are stamped by the event store on append, not by the caller.
type Event interface {
	Type() Type
	Stream() Stream
	RunID() uuid.UUID
	Sequence() int64
	CausedBy() *int64
	Timestamp() time.Time

	// WithSequence returns a copy of the event with store-assigned
	// sequence, causal-parent, and timestamp fields set. The event log
	// calls this once per append; handlers never call it.
	WithSequence(seq int64, causedBy *int64, ts time.Time) Event
}

// base is embedded by every concrete event struct. It carries the fields
// common to all events and implements the accessor methods of Event,
// leaving each concrete type responsible only for Type() and Stream().
type base struct {
	runID    uuid.UUID
	sequence int64
	causedBy *int64
	ts       time.Time
}

func newBase(runID uuid.UUID) base {
	return base{runID: runID}
}

func (b base) RunID() uuid.UUID    { return b.runID }
func (b base) Sequence() int64     { return b.sequence }
func (b base) CausedBy() *int64    { return b.causedBy }
func (b base) Timestamp() time.Time { return b.ts }

func (b base) stamped(seq int64, causedBy *int64, ts time.Time) base {
	b.sequence = seq
	b.causedBy = causedBy
	b.ts = ts
	return b
}
