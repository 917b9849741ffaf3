package notify

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

type fakePoster struct {
	channel string
	calls   int
}

func (f *fakePoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channel = channelID
	f.calls++
	return "C1", "123.456", nil
}

func TestRunSummary_PostsToSummaryChannel(t *testing.T) {
	poster := &fakePoster{}
	n := New(poster, "#scout-runs", "#scout-quarantine")

	err := n.RunSummary("run-1", events.RunStats{SignalsExtracted: 5, NodesCreated: 3})
	require.NoError(t, err)
	assert.Equal(t, "#scout-runs", poster.channel)
	assert.Equal(t, 1, poster.calls)
}

func TestQuarantine_PostsToQuarantineChannel(t *testing.T) {
	poster := &fakePoster{}
	n := New(poster, "#scout-runs", "#scout-quarantine")

	err := n.Quarantine("Tension", "Block dispute", "https://source.example", "missing required field")
	require.NoError(t, err)
	assert.Equal(t, "#scout-quarantine", poster.channel)
}

func TestRunFailed_PostsToSummaryChannel(t *testing.T) {
	poster := &fakePoster{}
	n := New(poster, "#scout-runs", "#scout-quarantine")

	err := n.RunFailed("run-2", "event log unavailable")
	require.NoError(t, err)
	assert.Equal(t, "#scout-runs", poster.channel)
}
