package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_RoundTripsRunLifecycleEvent(t *testing.T) {
	r := NewDefaultRegistry()
	runID := uuid.New()
	ev := NewRunStartedEvent(runID, RegionRef{Slug: "seattle", Lat: 47.6, Lng: -122.3, Radius: 15})
	ts := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	causedBy := int64(3)
	stamped := ev.WithSequence(7, &causedBy, ts)

	env, err := marshalForTest(stamped)
	require.NoError(t, err)

	decoded, err := r.Decode(env)
	require.NoError(t, err)
	decoded = decoded.WithSequence(stamped.Sequence(), stamped.CausedBy(), stamped.Timestamp())

	got, ok := decoded.(RunStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "seattle", got.Region.Slug)
	assert.Equal(t, runID, got.RunID())
	assert.Equal(t, int64(7), got.Sequence())
}

func TestDefaultRegistry_RoundTripsDiscoveredEventEmbeddedFields(t *testing.T) {
	r := NewDefaultRegistry()
	runID := uuid.New()
	ev := NewTensionDiscoveredEvent(runID, DiscoveredBase{
		ID:      uuid.New(),
		Title:   "eviction notices rising",
		Summary: "multiple tenants reporting notices this week",
	}, 0.82)

	env, err := marshalForTest(ev)
	require.NoError(t, err)

	decoded, err := r.Decode(env)
	require.NoError(t, err)

	got, ok := decoded.(TensionDiscoveredEvent)
	require.True(t, ok)
	assert.Equal(t, "eviction notices rising", got.Title)
	assert.InDelta(t, 0.82, got.CauseHeat, 0.001)
}

func TestDefaultRegistry_UnregisteredTypeFails(t *testing.T) {
	r := NewDefaultRegistry()
	_, err := r.Decode(Envelope{Type: Type("NotARealType"), Payload: []byte(`{}`)})
	require.Error(t, err)
	var unknown ErrUnknownType
	require.ErrorAs(t, err, &unknown)
}

func TestDefaultRegistry_EveryDeclaredTypeHasADecoder(t *testing.T) {
	r := NewDefaultRegistry()
	for _, typ := range allDeclaredTypes {
		_, ok := r.decoders[typ]
		assert.True(t, ok, "no decoder registered for %s", typ)
	}
}

// allDeclaredTypes mirrors the Type constants declared in events.go; kept
// here rather than derived via reflection so this test fails loudly the
// moment a new Type constant is added without a matching registration.
var allDeclaredTypes = []Type{
	TypeRunStarted, TypeRunCompleted, TypeRunCancelled,
	TypeSourcesScheduled, TypeSourceQueued, TypeContentFetched, TypeContentUnchanged,
	TypeContentFetchFailed, TypeUrlProcessed, TypePhaseCompleted, TypeSignalsExtracted,
	TypeExtractionDroppedNoDate,
	TypeGatheringDiscovered, TypeAidDiscovered, TypeNeedDiscovered, TypeNoticeDiscovered, TypeTensionDiscovered,
	TypeDedupVerdictReached, TypeNodeCreated, TypeNodeCorroborated, TypeNodeRefreshed,
	TypeObservationCorroborated, TypeCorroborationScored, TypeConfidenceScored,
	TypeFreshnessConfirmed, TypeEntityExpired, TypeEntityPurged,
	TypeSourceRegistered, TypeSourceChanged, TypeSourceDeactivated,
	TypeActorIdentified, TypeActorLinkedToEntity, TypeActorMerged, TypeResourceEdgeCreated,
	TypeResponseLinked, TypeGravityLinked, TypeEvidenceLinked,
	TypePlaceDiscovered, TypeGathersAtPlaceLinked, TypeCitationRecorded, TypeLinkPromoted,
	TypeSituationIdentified, TypeSituationChanged, TypeDispatchCreated,
	TypeDuplicateTensionMerged, TypeTensionLinkerOutcomeRecorded, TypeGatheringScouted,
	TypeLintQuarantineIssued, TypeLintVerdictRecorded,
	TypeMetricsUpdated, TypeEnrichmentCompleted, TypeExpansionCompleted,
}

func marshalForTest(ev Event) (Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: ev.Type(), Stream: ev.Stream(), Version: 1, Payload: payload}, nil
}
