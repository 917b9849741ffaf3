package synthesis

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
)

type fakeModelClient struct {
	responses []string
	calls     int
}

func (f *fakeModelClient) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	text := f.responses[f.calls]
	if f.calls < len(f.responses)-1 {
		f.calls++
	}
	return &llm.Response{Content: []llm.Message{{
		Role: llm.ConversationRoleAssistant, Parts: []llm.Part{llm.TextPart{Text: text}},
	}}}, nil
}

func (f *fakeModelClient) Stream(ctx context.Context, req *llm.Request) (llm.Streamer, error) {
	return nil, llm.ErrStreamingUnsupported
}

func newSynthesizer(responses ...string) *Synthesizer {
	client := &fakeModelClient{responses: responses}
	ext := llm.NewExtractor(client)
	return New(nil, nil, ext, ext)
}

func TestLinkTensions_AbandonsAfterMaxRetriesWithoutCallingLLM(t *testing.T) {
	s := newSynthesizer(`{"linked": false}`)
	runID := uuid.New()
	signal := graph.Signal{ID: uuid.New(), NodeType: events.NodeNeed, RetryCount: MaxLinkRetries}

	outcomes, err := s.LinkTensions(context.Background(), runID, nil, []graph.Signal{signal})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Events, 1)
	assert.Equal(t, events.TensionLinkerOutcomeRecordedEvent{}.Type(), outcomes[0].Events[0].Type())
}

func TestLinkTensions_SkipsAbandonedSignals(t *testing.T) {
	s := newSynthesizer()
	signal := graph.Signal{ID: uuid.New(), CuriosityInvestigated: "abandoned"}

	outcomes, err := s.LinkTensions(context.Background(), uuid.New(), nil, []graph.Signal{signal})
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestLinkTensions_NoMatchWhenNoCandidateClearsSimilarityThreshold(t *testing.T) {
	s := newSynthesizer()
	need := graph.Signal{ID: uuid.New(), NodeType: events.NodeNeed, Embedding: []float32{1, 0, 0}}
	tension := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Embedding: []float32{0, 1, 0}}

	outcomes, err := s.LinkTensions(context.Background(), uuid.New(), []graph.Signal{tension}, []graph.Signal{need})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "no-match", lastOutcomeKind(outcomes[0]))
}

func TestLinkTensions_LinksWhenLLMConfirmsCausalConnection(t *testing.T) {
	tensionID := uuid.New()
	s := newSynthesizer(`{"tension_id": "` + tensionID.String() + `", "linked": true, "explanation": "follows directly"}`)

	need := graph.Signal{ID: uuid.New(), NodeType: events.NodeNeed, Embedding: []float32{1, 0, 0}}
	tension := graph.Signal{ID: tensionID, NodeType: events.NodeTension, Embedding: []float32{1, 0, 0}}

	outcomes, err := s.LinkTensions(context.Background(), uuid.New(), []graph.Signal{tension}, []graph.Signal{need})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Len(t, outcomes[0].Events, 2)
	assert.Equal(t, events.TypeEvidenceLinked, outcomes[0].Events[0].Type())
}

func lastOutcomeKind(o TensionLinkOutcome) string {
	last := o.Events[len(o.Events)-1]
	rec, ok := last.(events.TensionLinkerOutcomeRecordedEvent)
	if !ok {
		return ""
	}
	return rec.Outcome
}
