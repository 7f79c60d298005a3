package notify

import (
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/slack-go/slack"
)

// SlackNotifier posts run summaries and high-intent lead alerts to a
// channel. It is optional; a nil notifier is a no-op.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

func NewSlackNotifier(token, channel string) *SlackNotifier {
	if token == "" || channel == "" {
		return nil
	}

	api := slack.New(token)
	if _, err := api.AuthTest(); err != nil {
		log.Printf("Slack auth failed, notifications disabled: %v", err)
		return nil
	}

	return &SlackNotifier{api: api, channel: channel}
}

func (n *SlackNotifier) send(message string) error {
	if n == nil {
		return nil
	}
	_, _, err := n.api.PostMessage(
		n.channel,
		slack.MsgOptionText(message, false),
	)
	return err
}

// NotifyHighIntentLead pings the channel about a freshly stored High-tier
// lead.
func (n *SlackNotifier) NotifyHighIntentLead(lead *models.Lead) {
	if n == nil {
		return
	}
	msg := fmt.Sprintf(":fire: High-intent lead: *%s* (%s, readiness %d/100)\n> %s\n%s",
		lead.Author,
		lead.Qualification.IntentType,
		lead.Qualification.ReadinessScore,
		truncateForSlack(lead.Comment, 300),
		lead.CommentURL,
	)
	if err := n.send(msg); err != nil {
		log.Printf("Failed to send Slack lead alert: %v", err)
	}
}

// NotifyRunSummary posts the end-of-run numbers.
func (n *SlackNotifier) NotifyRunSummary(scraped, qualified, stored, threads int) {
	if n == nil {
		return
	}
	msg := fmt.Sprintf("Lead run finished: %d scraped, %d qualified, %d stored, %d new threads",
		scraped, qualified, stored, threads)
	if err := n.send(msg); err != nil {
		log.Printf("Failed to send Slack run summary: %v", err)
	}
}

// NotifyError reports a run failure.
func (n *SlackNotifier) NotifyError(stage string, err error) {
	if n == nil {
		return
	}
	msg := fmt.Sprintf(":warning: Lead run error in %s: %v", stage, err)
	if sendErr := n.send(msg); sendErr != nil {
		log.Printf("Failed to send Slack error alert: %v", sendErr)
	}
}

func truncateForSlack(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max] + "..."
}
