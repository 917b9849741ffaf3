package events

import "time"

// Type() implementations. Grouped by stream, matching the layering in
// section 3.1: world facts, system decisions, pipeline telemetry.

func (e RunStartedEvent) Type() Type        { return TypeRunStarted }
func (e RunCompletedEvent) Type() Type      { return TypeRunCompleted }
func (e RunCancelledEvent) Type() Type      { return TypeRunCancelled }
func (e SourcesScheduledEvent) Type() Type  { return TypeSourcesScheduled }
func (e SourceQueuedEvent) Type() Type      { return TypeSourceQueued }
func (e UrlProcessedEvent) Type() Type      { return TypeUrlProcessed }
func (e PhaseCompletedEvent) Type() Type    { return TypePhaseCompleted }
func (e ExtractionDroppedNoDateEvent) Type() Type        { return TypeExtractionDroppedNoDate }
func (e TensionLinkerOutcomeRecordedEvent) Type() Type   { return TypeTensionLinkerOutcomeRecorded }
func (e GatheringScoutedEvent) Type() Type               { return TypeGatheringScouted }
func (e MetricsUpdatedEvent) Type() Type                 { return TypeMetricsUpdated }
func (e EnrichmentCompletedEvent) Type() Type            { return TypeEnrichmentCompleted }
func (e ExpansionCompletedEvent) Type() Type             { return TypeExpansionCompleted }

func (e GatheringDiscoveredEvent) Type() Type { return TypeGatheringDiscovered }
func (e AidDiscoveredEvent) Type() Type       { return TypeAidDiscovered }
func (e NeedDiscoveredEvent) Type() Type      { return TypeNeedDiscovered }
func (e NoticeDiscoveredEvent) Type() Type    { return TypeNoticeDiscovered }
func (e TensionDiscoveredEvent) Type() Type   { return TypeTensionDiscovered }
func (e ContentFetchedEvent) Type() Type      { return TypeContentFetched }
func (e ContentUnchangedEvent) Type() Type    { return TypeContentUnchanged }
func (e ContentFetchFailedEvent) Type() Type  { return TypeContentFetchFailed }
func (e CitationRecordedEvent) Type() Type    { return TypeCitationRecorded }
func (e SignalsExtractedEvent) Type() Type    { return TypeSignalsExtracted }
func (e LinkPromotedEvent) Type() Type        { return TypeLinkPromoted }

func (e DedupVerdictReachedEvent) Type() Type      { return TypeDedupVerdictReached }
func (e NodeCreatedEvent) Type() Type              { return TypeNodeCreated }
func (e NodeCorroboratedEvent) Type() Type         { return TypeNodeCorroborated }
func (e NodeRefreshedEvent) Type() Type            { return TypeNodeRefreshed }
func (e ObservationCorroboratedEvent) Type() Type  { return TypeObservationCorroborated }
func (e CorroborationScoredEvent) Type() Type      { return TypeCorroborationScored }
func (e ConfidenceScoredEvent) Type() Type         { return TypeConfidenceScored }
func (e FreshnessConfirmedEvent) Type() Type       { return TypeFreshnessConfirmed }
func (e EntityExpiredEvent) Type() Type            { return TypeEntityExpired }
func (e EntityPurgedEvent) Type() Type             { return TypeEntityPurged }
func (e ActorLinkedToEntityEvent) Type() Type      { return TypeActorLinkedToEntity }
func (e ActorMergedEvent) Type() Type              { return TypeActorMerged }
func (e ResourceEdgeCreatedEvent) Type() Type      { return TypeResourceEdgeCreated }
func (e ResponseLinkedEvent) Type() Type           { return TypeResponseLinked }
func (e GravityLinkedEvent) Type() Type            { return TypeGravityLinked }
func (e EvidenceLinkedEvent) Type() Type           { return TypeEvidenceLinked }
func (e GathersAtPlaceLinkedEvent) Type() Type     { return TypeGathersAtPlaceLinked }
func (e SituationIdentifiedEvent) Type() Type      { return TypeSituationIdentified }
func (e SituationChangedEvent) Type() Type         { return TypeSituationChanged }
func (e DispatchCreatedEvent) Type() Type          { return TypeDispatchCreated }
func (e DuplicateTensionMergedEvent) Type() Type   { return TypeDuplicateTensionMerged }
func (e LintVerdictRecordedEvent) Type() Type      { return TypeLintVerdictRecorded }
func (e LintQuarantineIssuedEvent) Type() Type     { return TypeLintQuarantineIssued }
func (e SourceChangedEvent) Type() Type            { return TypeSourceChanged }
func (e SourceDeactivatedEvent) Type() Type        { return TypeSourceDeactivated }
func (e PlaceDiscoveredEvent) Type() Type          { return TypePlaceDiscovered }
func (e SourceRegisteredEvent) Type() Type         { return TypeSourceRegistered }
func (e ActorIdentifiedEvent) Type() Type          { return TypeActorIdentified }

// Stream() implementations.

func (e RunStartedEvent) Stream() Stream       { return StreamTelemetry }
func (e RunCompletedEvent) Stream() Stream     { return StreamTelemetry }
func (e RunCancelledEvent) Stream() Stream     { return StreamTelemetry }
func (e SourcesScheduledEvent) Stream() Stream { return StreamTelemetry }
func (e SourceQueuedEvent) Stream() Stream     { return StreamTelemetry }
func (e UrlProcessedEvent) Stream() Stream     { return StreamTelemetry }
func (e PhaseCompletedEvent) Stream() Stream   { return StreamTelemetry }
func (e ExtractionDroppedNoDateEvent) Stream() Stream      { return StreamTelemetry }
func (e TensionLinkerOutcomeRecordedEvent) Stream() Stream { return StreamTelemetry }
func (e GatheringScoutedEvent) Stream() Stream             { return StreamTelemetry }
func (e MetricsUpdatedEvent) Stream() Stream               { return StreamTelemetry }
func (e EnrichmentCompletedEvent) Stream() Stream          { return StreamTelemetry }
func (e ExpansionCompletedEvent) Stream() Stream           { return StreamTelemetry }

func (e GatheringDiscoveredEvent) Stream() Stream { return StreamWorld }
func (e AidDiscoveredEvent) Stream() Stream       { return StreamWorld }
func (e NeedDiscoveredEvent) Stream() Stream      { return StreamWorld }
func (e NoticeDiscoveredEvent) Stream() Stream    { return StreamWorld }
func (e TensionDiscoveredEvent) Stream() Stream   { return StreamWorld }
func (e ContentFetchedEvent) Stream() Stream      { return StreamWorld }
func (e ContentUnchangedEvent) Stream() Stream    { return StreamWorld }
func (e ContentFetchFailedEvent) Stream() Stream  { return StreamWorld }
func (e CitationRecordedEvent) Stream() Stream    { return StreamWorld }
func (e SignalsExtractedEvent) Stream() Stream    { return StreamWorld }
func (e LinkPromotedEvent) Stream() Stream        { return StreamWorld }

func (e DedupVerdictReachedEvent) Stream() Stream      { return StreamDecision }
func (e NodeCreatedEvent) Stream() Stream              { return StreamDecision }
func (e NodeCorroboratedEvent) Stream() Stream         { return StreamDecision }
func (e NodeRefreshedEvent) Stream() Stream            { return StreamDecision }
func (e ObservationCorroboratedEvent) Stream() Stream  { return StreamDecision }
func (e CorroborationScoredEvent) Stream() Stream      { return StreamDecision }
func (e ConfidenceScoredEvent) Stream() Stream         { return StreamDecision }
func (e FreshnessConfirmedEvent) Stream() Stream       { return StreamDecision }
func (e EntityExpiredEvent) Stream() Stream            { return StreamDecision }
func (e EntityPurgedEvent) Stream() Stream             { return StreamDecision }
func (e ActorLinkedToEntityEvent) Stream() Stream      { return StreamDecision }
func (e ActorMergedEvent) Stream() Stream              { return StreamDecision }
func (e ResourceEdgeCreatedEvent) Stream() Stream      { return StreamDecision }
func (e ResponseLinkedEvent) Stream() Stream           { return StreamDecision }
func (e GravityLinkedEvent) Stream() Stream            { return StreamDecision }
func (e EvidenceLinkedEvent) Stream() Stream           { return StreamDecision }
func (e GathersAtPlaceLinkedEvent) Stream() Stream     { return StreamDecision }
func (e SituationIdentifiedEvent) Stream() Stream      { return StreamDecision }
func (e SituationChangedEvent) Stream() Stream         { return StreamDecision }
func (e DispatchCreatedEvent) Stream() Stream          { return StreamDecision }
func (e DuplicateTensionMergedEvent) Stream() Stream   { return StreamDecision }
func (e LintVerdictRecordedEvent) Stream() Stream      { return StreamDecision }
func (e LintQuarantineIssuedEvent) Stream() Stream     { return StreamDecision }
func (e SourceChangedEvent) Stream() Stream            { return StreamDecision }
func (e SourceDeactivatedEvent) Stream() Stream        { return StreamDecision }
func (e PlaceDiscoveredEvent) Stream() Stream          { return StreamDecision }
func (e SourceRegisteredEvent) Stream() Stream         { return StreamDecision }
func (e ActorIdentifiedEvent) Stream() Stream          { return StreamDecision }

// WithSequence implementations. Each copies the receiver by value (structs,
// not pointers, so this is cheap) and re-stamps the embedded base.

func (e RunStartedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e RunCompletedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e RunCancelledEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SourcesScheduledEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SourceQueuedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e UrlProcessedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e PhaseCompletedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ExtractionDroppedNoDateEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e TensionLinkerOutcomeRecordedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e GatheringScoutedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e MetricsUpdatedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e EnrichmentCompletedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ExpansionCompletedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }

func (e GatheringDiscoveredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e AidDiscoveredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e NeedDiscoveredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e NoticeDiscoveredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e TensionDiscoveredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ContentFetchedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ContentUnchangedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ContentFetchFailedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e CitationRecordedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SignalsExtractedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e LinkPromotedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }

func (e DedupVerdictReachedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e NodeCreatedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e NodeCorroboratedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e NodeRefreshedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ObservationCorroboratedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e CorroborationScoredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ConfidenceScoredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e FreshnessConfirmedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e EntityExpiredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e EntityPurgedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ActorLinkedToEntityEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ActorMergedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ResourceEdgeCreatedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ResponseLinkedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e GravityLinkedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e EvidenceLinkedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e GathersAtPlaceLinkedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SituationIdentifiedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SituationChangedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e DispatchCreatedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e DuplicateTensionMergedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e LintVerdictRecordedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e LintQuarantineIssuedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SourceChangedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SourceDeactivatedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e PlaceDiscoveredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e SourceRegisteredEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
func (e ActorIdentifiedEvent) WithSequence(seq int64, c *int64, ts time.Time) Event { e.base = e.base.stamped(seq, c, ts); return e }
