package approval

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// Decision is the parsed outcome of a reviewer's email response.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionWait    Decision = "wait"
	// DecisionEdit means the body replaces the draft and the reply is approved.
	DecisionEdit Decision = "edit"
)

// Response is one parsed reviewer decision.
type Response struct {
	Decision Decision
	// Text carries the replacement draft for edits, or the reviewer's note
	// for rejections.
	Text string
}

// ReplyStore is the reply persistence surface the gate needs.
type ReplyStore interface {
	GetByID(ctx context.Context, id string) (*models.PendingReply, error)
	Update(ctx context.Context, reply *models.PendingReply) error
}

// Gate applies human approval decisions to drafted replies.
type Gate struct {
	store ReplyStore
}

func NewGate(store ReplyStore) *Gate {
	return &Gate{store: store}
}

// signatureMarkers end the useful part of an email body. Everything from the
// first marker on is discarded.
var signatureMarkers = []string{
	"sent from",
	"get outlook",
	"best regards",
	"thanks,",
}

// cleanBody strips quoted lines and trailing signatures from a raw reply
// email body.
func cleanBody(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(line))
		stop := false
		for _, marker := range signatureMarkers {
			if strings.HasPrefix(lower, marker) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ParseResponse interprets a reviewer's email body. Keyword commands take
// precedence in order APPROVE, REJECT, WAIT; any other non-empty body is an
// edit that replaces the draft and approves it.
func ParseResponse(body string) Response {
	cleaned := cleanBody(body)
	upper := strings.ToUpper(cleaned)

	switch {
	case strings.HasPrefix(upper, "APPROVE"):
		return Response{Decision: DecisionApprove}
	case strings.HasPrefix(upper, "REJECT"):
		note := strings.TrimSpace(strings.TrimPrefix(cleaned[len("REJECT"):], ","))
		return Response{Decision: DecisionReject, Text: note}
	case strings.HasPrefix(upper, "WAIT"):
		return Response{Decision: DecisionWait}
	case cleaned == "":
		return Response{Decision: DecisionWait}
	default:
		return Response{Decision: DecisionEdit, Text: cleaned}
	}
}

// Apply transitions a reply according to a parsed decision. Decisions on
// replies already past pending are rejected.
func (g *Gate) Apply(ctx context.Context, replyID string, response Response) (*models.PendingReply, error) {
	reply, err := g.store.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}

	if reply.Status != models.ReplyPending {
		return nil, fmt.Errorf("reply %s is %s, no decision applies", reply.ID, reply.Status)
	}

	now := time.Now()
	switch response.Decision {
	case DecisionApprove:
		reply.Status = models.ReplyApproved
		reply.DecidedAt = &now
	case DecisionEdit:
		reply.DraftText = response.Text
		reply.Status = models.ReplyApproved
		reply.Notes = "draft edited by reviewer"
		reply.DecidedAt = &now
	case DecisionReject:
		reply.Status = models.ReplyRejected
		reply.Notes = response.Text
		reply.DecidedAt = &now
	case DecisionWait:
		// Status stays pending so the next decision still applies, but the
		// deferral is persisted for audit.
		reply.Notes = fmt.Sprintf("deferred by reviewer at %s", now.Format(time.RFC3339))
	default:
		return nil, fmt.Errorf("unknown decision %q", response.Decision)
	}

	if err := g.store.Update(ctx, reply); err != nil {
		return nil, err
	}

	log.Printf("Reply %s: %s", reply.ID, reply.Status)
	return reply, nil
}
