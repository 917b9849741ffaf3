// Package notify posts run-summary and quarantine alerts to Slack, per
// section 7's "user-visible behavior": a run-end summary, and an
// immediate post when a signal or situation is quarantined or a run ends
// in fatal error.
package notify

import (
	"fmt"

	"github.com/slack-go/slack"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// Poster is the subset of *slack.Client this package calls, narrowed so
// tests can substitute a fake instead of hitting the Slack API.
type Poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier posts run summaries and quarantine alerts to configured
// channels.
type Notifier struct {
	client            Poster
	summaryChannel    string
	quarantineChannel string
}

// New builds a Notifier over a *slack.Client (or a fake Poster in
// tests).
func New(client Poster, summaryChannel, quarantineChannel string) *Notifier {
	return &Notifier{client: client, summaryChannel: summaryChannel, quarantineChannel: quarantineChannel}
}

// NewFromToken constructs a Notifier using slack-go's default HTTP
// client.
func NewFromToken(token, summaryChannel, quarantineChannel string) *Notifier {
	return New(slack.New(token), summaryChannel, quarantineChannel)
}

// RunSummary posts a run's completion stats to the summary channel.
func (n *Notifier) RunSummary(runID string, stats events.RunStats) error {
	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", fmt.Sprintf("Scout run %s complete", runID), false, false)),
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", summaryText(stats), false, false), nil, nil),
	}
	_, _, err := n.client.PostMessage(n.summaryChannel, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("notify: post run summary: %w", err)
	}
	return nil
}

// RunFailed posts a run-cancellation alert to the summary channel.
func (n *Notifier) RunFailed(runID, reason string) error {
	text := fmt.Sprintf(":warning: Scout run `%s` was cancelled: %s", runID, reason)
	_, _, err := n.client.PostMessage(n.summaryChannel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("notify: post run failure: %w", err)
	}
	return nil
}

// Quarantine posts an immediate alert when a signal or situation is
// quarantined by a lint gate, per section 4.10.
func (n *Notifier) Quarantine(nodeType, title, url, verdictReason string) error {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", fmt.Sprintf(
			":rotating_light: *%s quarantined*: %s\n<%s|source>\n_%s_", nodeType, title, url, verdictReason,
		), false, false), nil, nil),
	}
	_, _, err := n.client.PostMessage(n.quarantineChannel, slack.MsgOptionBlocks(blocks...))
	if err != nil {
		return fmt.Errorf("notify: post quarantine alert: %w", err)
	}
	return nil
}

func summaryText(stats events.RunStats) string {
	return fmt.Sprintf(
		"*Sources scheduled:* %d\n*Signals extracted:* %d\n*Created:* %d · *Corroborated:* %d · *Refreshed:* %d\n"+
			"*Fetch failures:* %d\n*Quarantines:* %d\n*Situations formed:* %d",
		stats.SourcesScheduled, stats.SignalsExtracted, stats.NodesCreated, stats.NodesCorroborated, stats.NodesRefreshed,
		stats.FetchFailures, stats.Quarantines, stats.SituationsFormed,
	)
}
