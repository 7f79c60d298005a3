package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/wneessen/go-mail"
)

// EmailNotifier sends approval requests and lead digests over SMTP.
type EmailNotifier struct {
	client     *mail.Client
	from       string
	recipients []string
}

func NewEmailNotifier(host string, port int, from, password string, recipients []string) (*EmailNotifier, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(from),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return &EmailNotifier{client: client, from: from, recipients: recipients}, nil
}

func (n *EmailNotifier) send(subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.recipients...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := n.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendApprovalRequest emails a drafted reply for review. The subject carries
// the reply ID so the decision can be matched back.
func (n *EmailNotifier) SendApprovalRequest(reply *models.PendingReply, thread *models.ConversationThread) error {
	subject := fmt.Sprintf("[Reply Approval] %s - stage %d (reply %s)", thread.Author, thread.Stage, reply.ID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "A reply is ready for %s (pain type: %s, readiness %d/100).\n\n",
		thread.Author, thread.PainType, thread.ReadinessScore)
	fmt.Fprintf(&sb, "Their original comment:\n%s\n\n", thread.OriginalComment)
	if reply.TheirLastMessage != "" {
		fmt.Fprintf(&sb, "Their latest message:\n%s\n\n", reply.TheirLastMessage)
	}
	fmt.Fprintf(&sb, "Drafted reply (as %s):\n%s\n\n", reply.Responder, reply.DraftText)
	if reply.SuggestedResource != "" {
		fmt.Fprintf(&sb, "Attached resource: %s\n\n", reply.SuggestedResource)
	}
	sb.WriteString("Reply to this email with:\n")
	sb.WriteString("  APPROVE          - post as drafted\n")
	sb.WriteString("  REJECT, <reason> - discard the draft\n")
	sb.WriteString("  WAIT             - decide later\n")
	sb.WriteString("  <anything else>  - replaces the draft and approves it\n")

	if err := n.send(subject, sb.String()); err != nil {
		return err
	}

	log.Printf("Sent approval request for reply %s", reply.ID)
	return nil
}

// SendLeadDigest emails a summary of recently stored leads, highest tier
// first within their scrape order.
func (n *EmailNotifier) SendLeadDigest(leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	subject := fmt.Sprintf("[Lead Digest] %d new leads", len(leads))

	var sb strings.Builder
	byTier := map[models.IntentTier][]*models.Lead{}
	for _, lead := range leads {
		tier := lead.Qualification.Tier()
		byTier[tier] = append(byTier[tier], lead)
	}

	for _, tier := range []models.IntentTier{models.TierHigh, models.TierMedium, models.TierLow} {
		group := byTier[tier]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "=== %s intent (%d) ===\n\n", tier, len(group))
		for _, lead := range group {
			fmt.Fprintf(&sb, "%s | %s | readiness %d | pain %d\n%s\n%s\n\n",
				lead.Author,
				lead.Qualification.IntentType,
				lead.Qualification.ReadinessScore,
				lead.Qualification.PainIntensity,
				truncateForSlack(lead.Comment, 400),
				lead.CommentURL,
			)
		}
	}

	if err := n.send(subject, sb.String()); err != nil {
		return err
	}

	log.Printf("Sent lead digest with %d leads", len(leads))
	return nil
}

// SendError emails a run failure notice.
func (n *EmailNotifier) SendError(stage string, runErr error) error {
	subject := fmt.Sprintf("[Lead Run Failed] error in %s", stage)
	body := fmt.Sprintf("The lead run hit an error during %s:\n\n%v\n", stage, runErr)
	return n.send(subject, body)
}
