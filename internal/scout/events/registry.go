package events

import "encoding/json"

// NewDefaultRegistry returns a Registry with a decoder registered for every
// event type defined in this package. json.Unmarshal round-trips cleanly
// here because each concrete event's exported fields are exactly its wire
// payload — the embedded base is unexported and never marshaled, and is
// re-stamped by the caller via WithSequence after Decode returns (see
// upcast.go). No upcasters are registered: every type is still at its
// original wire version, so the identity upcast upcast.go documents applies
// implicitly by omission.
//
// Callers that only ever append events (never read them back) can pass
// events.NewRegistry() instead; this constructor is for anything that
// replays history, such as the orchestration shell or scoutctl's dump and
// replay subcommands.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(TypeRunStarted, decodeJSON[RunStartedEvent], nil)
	r.Register(TypeRunCompleted, decodeJSON[RunCompletedEvent], nil)
	r.Register(TypeRunCancelled, decodeJSON[RunCancelledEvent], nil)
	r.Register(TypeSourcesScheduled, decodeJSON[SourcesScheduledEvent], nil)
	r.Register(TypeSourceQueued, decodeJSON[SourceQueuedEvent], nil)
	r.Register(TypeContentFetched, decodeJSON[ContentFetchedEvent], nil)
	r.Register(TypeContentUnchanged, decodeJSON[ContentUnchangedEvent], nil)
	r.Register(TypeContentFetchFailed, decodeJSON[ContentFetchFailedEvent], nil)
	r.Register(TypeUrlProcessed, decodeJSON[UrlProcessedEvent], nil)
	r.Register(TypePhaseCompleted, decodeJSON[PhaseCompletedEvent], nil)
	r.Register(TypeSignalsExtracted, decodeJSON[SignalsExtractedEvent], nil)
	r.Register(TypeExtractionDroppedNoDate, decodeJSON[ExtractionDroppedNoDateEvent], nil)

	r.Register(TypeGatheringDiscovered, decodeJSON[GatheringDiscoveredEvent], nil)
	r.Register(TypeAidDiscovered, decodeJSON[AidDiscoveredEvent], nil)
	r.Register(TypeNeedDiscovered, decodeJSON[NeedDiscoveredEvent], nil)
	r.Register(TypeNoticeDiscovered, decodeJSON[NoticeDiscoveredEvent], nil)
	r.Register(TypeTensionDiscovered, decodeJSON[TensionDiscoveredEvent], nil)

	r.Register(TypeDedupVerdictReached, decodeJSON[DedupVerdictReachedEvent], nil)
	r.Register(TypeNodeCreated, decodeJSON[NodeCreatedEvent], nil)
	r.Register(TypeNodeCorroborated, decodeJSON[NodeCorroboratedEvent], nil)
	r.Register(TypeNodeRefreshed, decodeJSON[NodeRefreshedEvent], nil)
	r.Register(TypeObservationCorroborated, decodeJSON[ObservationCorroboratedEvent], nil)
	r.Register(TypeCorroborationScored, decodeJSON[CorroborationScoredEvent], nil)
	r.Register(TypeConfidenceScored, decodeJSON[ConfidenceScoredEvent], nil)
	r.Register(TypeFreshnessConfirmed, decodeJSON[FreshnessConfirmedEvent], nil)
	r.Register(TypeEntityExpired, decodeJSON[EntityExpiredEvent], nil)
	r.Register(TypeEntityPurged, decodeJSON[EntityPurgedEvent], nil)

	r.Register(TypeSourceRegistered, decodeJSON[SourceRegisteredEvent], nil)
	r.Register(TypeSourceChanged, decodeJSON[SourceChangedEvent], nil)
	r.Register(TypeSourceDeactivated, decodeJSON[SourceDeactivatedEvent], nil)
	r.Register(TypeActorIdentified, decodeJSON[ActorIdentifiedEvent], nil)
	r.Register(TypeActorLinkedToEntity, decodeJSON[ActorLinkedToEntityEvent], nil)
	r.Register(TypeActorMerged, decodeJSON[ActorMergedEvent], nil)
	r.Register(TypeResourceEdgeCreated, decodeJSON[ResourceEdgeCreatedEvent], nil)
	r.Register(TypeResponseLinked, decodeJSON[ResponseLinkedEvent], nil)
	r.Register(TypeGravityLinked, decodeJSON[GravityLinkedEvent], nil)
	r.Register(TypeEvidenceLinked, decodeJSON[EvidenceLinkedEvent], nil)
	r.Register(TypePlaceDiscovered, decodeJSON[PlaceDiscoveredEvent], nil)
	r.Register(TypeGathersAtPlaceLinked, decodeJSON[GathersAtPlaceLinkedEvent], nil)
	r.Register(TypeCitationRecorded, decodeJSON[CitationRecordedEvent], nil)
	r.Register(TypeLinkPromoted, decodeJSON[LinkPromotedEvent], nil)

	r.Register(TypeSituationIdentified, decodeJSON[SituationIdentifiedEvent], nil)
	r.Register(TypeSituationChanged, decodeJSON[SituationChangedEvent], nil)
	r.Register(TypeDispatchCreated, decodeJSON[DispatchCreatedEvent], nil)
	r.Register(TypeDuplicateTensionMerged, decodeJSON[DuplicateTensionMergedEvent], nil)
	r.Register(TypeTensionLinkerOutcomeRecorded, decodeJSON[TensionLinkerOutcomeRecordedEvent], nil)
	r.Register(TypeGatheringScouted, decodeJSON[GatheringScoutedEvent], nil)

	r.Register(TypeLintVerdictRecorded, decodeJSON[LintVerdictRecordedEvent], nil)
	r.Register(TypeLintQuarantineIssued, decodeJSON[LintQuarantineIssuedEvent], nil)

	r.Register(TypeMetricsUpdated, decodeJSON[MetricsUpdatedEvent], nil)
	r.Register(TypeEnrichmentCompleted, decodeJSON[EnrichmentCompletedEvent], nil)
	r.Register(TypeExpansionCompleted, decodeJSON[ExpansionCompletedEvent], nil)

	return r
}

// decodeJSON is the shared Decoder body for every concrete event type: T's
// exported fields are its entire wire payload, so a zero-value T unmarshals
// directly into a valid Event.
func decodeJSON[T Event](payload []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return ev, nil
}
