package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// maxReplyStage is the hard cap on automated back-and-forth: no reply is
// drafted for a thread at this stage or beyond.
const maxReplyStage = 5

// resourceReadinessThreshold gates resource attachment.
const resourceReadinessThreshold = 60

// ResourceCatalog resolves suggested resource names against the store.
type ResourceCatalog interface {
	GetResourceByName(ctx context.Context, name string) (*models.Resource, error)
}

// ReplyDraft is a generated candidate reply plus the generator's metadata.
type ReplyDraft struct {
	Text                string
	ShouldShareResource bool
	SuggestedResource   string
	Resource            *models.Resource
	EstimatedReadiness  int
	Tone                string
	NextAction          string
}

// ReplyGenerator drafts context-aware replies for active threads.
type ReplyGenerator struct {
	backend Backend
	catalog ResourceCatalog
}

func NewReplyGenerator(backend Backend, catalog ResourceCatalog) *ReplyGenerator {
	return &ReplyGenerator{backend: backend, catalog: catalog}
}

// ShouldGenerateReplyForThread reports whether a thread is eligible for a
// drafted reply: it must be active and below the stage cap.
func ShouldGenerateReplyForThread(thread *models.ConversationThread) bool {
	if thread.Status != models.ThreadActive {
		return false
	}
	if thread.Stage >= maxReplyStage {
		log.Printf("Thread %s at stage %d, skipping reply generation", thread.ID, thread.Stage)
		return false
	}
	return true
}

type rawReply struct {
	Reply               string `json:"reply"`
	ShouldShareResource bool   `json:"should_share_resource"`
	SuggestedResource   string `json:"suggested_resource"`
	EstimatedReadiness  int    `json:"estimated_readiness"`
	Tone                string `json:"tone"`
	NextAction          string `json:"next_action"`
}

// Generate drafts a reply for the thread as the given responder. The model's
// resource decision is treated as advisory: the stage-0 and readiness rules
// are enforced here, and a suggested resource must resolve against the
// catalog or it is dropped. Generation never blocks the pipeline; on backend
// failure a canned per-pain-type reply is returned.
func (g *ReplyGenerator) Generate(ctx context.Context, thread *models.ConversationThread, responder models.Responder) *ReplyDraft {
	prompt := g.buildPrompt(thread, responder)

	var raw rawReply
	text, err := g.backend.Complete(ctx, prompt)
	if err == nil {
		err = json.Unmarshal([]byte(stripCodeFence(text)), &raw)
	}
	if err != nil || strings.TrimSpace(raw.Reply) == "" {
		log.Printf("Reply generation failed for thread %s, using fallback: %v", thread.ID, err)
		return &ReplyDraft{
			Text:               fallbackReply(thread),
			EstimatedReadiness: thread.ReadinessScore,
			Tone:               "compassionate",
			NextAction:         "wait_for_response",
		}
	}

	draft := &ReplyDraft{
		Text:                strings.TrimSpace(raw.Reply),
		ShouldShareResource: raw.ShouldShareResource,
		SuggestedResource:   strings.TrimSpace(raw.SuggestedResource),
		EstimatedReadiness:  raw.EstimatedReadiness,
		Tone:                raw.Tone,
		NextAction:          raw.NextAction,
	}
	if draft.EstimatedReadiness < 0 || draft.EstimatedReadiness > 100 {
		draft.EstimatedReadiness = thread.ReadinessScore
	}

	g.applyResourcePolicy(ctx, thread, responder, draft)
	return draft
}

// applyResourcePolicy enforces the attachment rules regardless of what the
// model asked for: never at stage 0, only at readiness >= 60, and only for a
// resource that resolves in the catalog.
func (g *ReplyGenerator) applyResourcePolicy(ctx context.Context, thread *models.ConversationThread, responder models.Responder, draft *ReplyDraft) {
	if !draft.ShouldShareResource || draft.SuggestedResource == "" {
		draft.ShouldShareResource = false
		draft.SuggestedResource = ""
		return
	}

	if thread.Stage < 1 || thread.ReadinessScore < resourceReadinessThreshold {
		log.Printf("Suppressing resource %q (stage=%d, readiness=%d)",
			draft.SuggestedResource, thread.Stage, thread.ReadinessScore)
		draft.ShouldShareResource = false
		draft.SuggestedResource = ""
		return
	}

	resource, err := g.catalog.GetResourceByName(ctx, draft.SuggestedResource)
	if err != nil || resource == nil {
		log.Printf("Suggested resource %q not found in catalog, sending reply without it", draft.SuggestedResource)
		draft.ShouldShareResource = false
		draft.SuggestedResource = ""
		return
	}

	// The resource's own constraints bind on top of the global rules.
	if !resource.Applicable(thread.PainType, thread.ReadinessScore) {
		log.Printf("Resource %q not applicable (pain=%s, readiness=%d, min=%d), sending reply without it",
			resource.Name, thread.PainType, thread.ReadinessScore, resource.MinReadiness)
		draft.ShouldShareResource = false
		draft.SuggestedResource = ""
		return
	}

	draft.Resource = resource
	draft.Text = formatWithResource(draft.Text, resource, responder)
}

func formatWithResource(reply string, r *models.Resource, responder models.Responder) string {
	return fmt.Sprintf("%s\n\nI'd like to share a free resource that might help: %s\n%s\n\n%s\n\n%s",
		reply, r.Name, r.Description, r.Link, responder.SignOff)
}

// fallbackReply is the fixed per-pain-type reply used when generation fails.
func fallbackReply(thread *models.ConversationThread) string {
	name := thread.Author
	if name == "" {
		name = "friend"
	}

	switch thread.PainType {
	case models.IntentSpiritual:
		return fmt.Sprintf("Thank you for sharing, %s. Your search for deeper meaning resonates deeply. What aspects of your journey are you most curious about?", name)
	case models.IntentMentalPain:
		return fmt.Sprintf("I hear you, %s. Dealing with these challenges takes courage. How long have you been experiencing this?", name)
	case models.IntentDiscipline:
		return fmt.Sprintf("I understand, %s. Staying consistent with practice is one of the biggest challenges. What usually causes you to stop?", name)
	case models.IntentPhysicalPain:
		return fmt.Sprintf("Thank you for sharing, %s. How long have you been experiencing this discomfort?", name)
	default:
		return fmt.Sprintf("Thank you for your comment, %s. I'd love to understand more about what you're experiencing.", name)
	}
}

func (g *ReplyGenerator) buildPrompt(thread *models.ConversationThread, responder models.Responder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are %s, %s, replying to YouTube comments in a real conversation.

Your background: %s
Your tone: %s. Warm, genuine, never salesy. Keep replies 3-5 sentences and
end with an open question. Sign off: %s

Conversation guidelines:
- Stage 0 (first reply): build rapport and ask questions. Do NOT share resources.
- Stage 1+: you may suggest ONE resource, but only if readiness is 60 or higher.
- Match their energy; never sound like a bot.

`, responder.Name, responder.Role, responder.Experience, responder.Tone, responder.SignOff)

	fmt.Fprintf(&sb, "Lead: %s\nStage: %d\nPain type: %s\nReadiness: %d/100\nResources already shared: %s\n\nConversation history:\n%s\n",
		thread.Author, thread.Stage, thread.PainType, thread.ReadinessScore,
		joinOrNone(thread.ResourcesShared), thread.FullHistory)

	if thread.FullHistory == "" {
		fmt.Fprintf(&sb, "\nTheir original comment:\n%q\n", thread.OriginalComment)
	}

	sb.WriteString(`
Respond with ONLY a JSON object:
{
  "reply": "your reply text",
  "should_share_resource": true or false,
  "suggested_resource": "exact resource name or empty string",
  "estimated_readiness": 0-100,
  "tone": "compassionate" | "casual" | "formal",
  "next_action": "wait_for_response" | "share_resource" | "close_conversation"
}`)
	return sb.String()
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
