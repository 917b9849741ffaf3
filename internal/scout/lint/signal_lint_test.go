package lint

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

type fakeModelClient struct{ response string }

func (f *fakeModelClient) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: []llm.Message{{
		Role: llm.ConversationRoleAssistant, Parts: []llm.Part{llm.TextPart{Text: f.response}},
	}}}, nil
}

func (f *fakeModelClient) Stream(ctx context.Context, req *llm.Request) (llm.Streamer, error) {
	return nil, llm.ErrStreamingUnsupported
}

func newTestLinters(t *testing.T, response string) (*SignalLinter, *SituationLinter) {
	t.Helper()
	policy, err := NewPolicyGate(context.Background())
	require.NoError(t, err)
	ext := llm.NewExtractor(&fakeModelClient{response: response})
	return New(policy, ext, ext)
}

func TestLintSignal_QuarantinesOnMissingFieldsWithoutCallingModel(t *testing.T) {
	signalLinter, _ := newTestLinters(t, `{"verdict": "pass"}`)
	signal := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Summary: "", SourceURL: "https://x.example"}

	result, err := signalLinter.LintSignal(context.Background(), uuid.New(), signal, nil, "source content")
	require.NoError(t, err)
	assert.Equal(t, OutcomeQuarantine, result.Outcome)
	require.Len(t, result.Events, 2)
	assert.Equal(t, events.TypeLintQuarantineIssued, result.Events[1].Type())
}

func TestLintSignal_QuarantinesOnSensitivityDowngrade(t *testing.T) {
	signalLinter, _ := newTestLinters(t, `{"verdict": "pass"}`)
	signal := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "t", Summary: "s", SourceURL: "https://x.example", Sensitivity: "low"}
	previous := &graph.Signal{Sensitivity: "high"}

	result, err := signalLinter.LintSignal(context.Background(), uuid.New(), signal, previous, "source content")
	require.NoError(t, err)
	assert.Equal(t, OutcomeQuarantine, result.Outcome)
}

func TestLintSignal_PassesCleanSignalThroughToModelVerdict(t *testing.T) {
	signalLinter, _ := newTestLinters(t, `{"verdict": "pass", "reason": "matches source"}`)
	signal := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "t", Summary: "s", SourceURL: "https://x.example"}

	result, err := signalLinter.LintSignal(context.Background(), uuid.New(), signal, nil, "source content")
	require.NoError(t, err)
	assert.Equal(t, OutcomePass, result.Outcome)
	require.Len(t, result.Events, 1)
	assert.Equal(t, events.TypeLintVerdictRecorded, result.Events[0].Type())
}

func TestLintSignal_RecordsQuarantineFromModelVerdict(t *testing.T) {
	signalLinter, _ := newTestLinters(t, `{"verdict": "quarantine", "reason": "unverifiable claim"}`)
	signal := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "t", Summary: "s", SourceURL: "https://x.example"}

	result, err := signalLinter.LintSignal(context.Background(), uuid.New(), signal, nil, "source content")
	require.NoError(t, err)
	assert.Equal(t, OutcomeQuarantine, result.Outcome)
	require.Len(t, result.Events, 2)
}
