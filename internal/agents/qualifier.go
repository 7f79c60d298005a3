package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/sadhaka-labs/leadstream/internal/retry"
)

// Qualifier classifies comments into structured pain/readiness judgments.
// It owns the canonical qualification record: every comment that survives
// pre-filtering gets one, even when the backend is down.
type Qualifier struct {
	backend Backend
	policy  retry.Policy
}

func NewQualifier(backend Backend) *Qualifier {
	return &Qualifier{
		backend: backend,
		policy:  retry.DefaultPolicy(),
	}
}

// rawQualification is the wire shape of the model's answer. Numbers arrive as
// floats and are clamped before acceptance.
type rawQualification struct {
	IntentType      string  `json:"intent_type"`
	PainIntensity   float64 `json:"pain_intensity"`
	ReadinessScore  float64 `json:"readiness_score"`
	PracticeMention string  `json:"practice_mention"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
}

// Classify returns a validated Qualification for the comment. Transport and
// parse failures are retried with bounded backoff; if every attempt fails a
// safe low_intent default is returned so the comment still reaches the store.
func (q *Qualifier) Classify(ctx context.Context, c *models.Comment) models.Qualification {
	prompt := q.buildPrompt(c)

	var raw rawQualification
	err := q.policy.Do(ctx, "classification", func() error {
		text, err := q.backend.Complete(ctx, prompt)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(stripCodeFence(text)), &raw); err != nil {
			return fmt.Errorf("invalid classifier JSON: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Classification failed for %s, storing safe default: %v", c.Author, err)
		return models.Qualification{
			IntentType: models.IntentLowIntent,
			Reasoning:  fmt.Sprintf("classification failed: %v", err),
		}
	}

	return validate(raw)
}

// validate clamps all numeric fields to their declared ranges and coerces an
// out-of-enum intent to low_intent. Model output is never propagated raw.
func validate(raw rawQualification) models.Qualification {
	intent, ok := models.ParseIntentType(strings.TrimSpace(raw.IntentType))
	if !ok {
		log.Printf("Warning: classifier returned unknown intent_type %q, coercing to low_intent", raw.IntentType)
	}

	return models.Qualification{
		IntentType:      intent,
		PainIntensity:   clamp(raw.PainIntensity, 0, 10),
		ReadinessScore:  clamp(raw.ReadinessScore, 0, 100),
		PracticeMention: strings.TrimSpace(raw.PracticeMention),
		Confidence:      clamp(raw.Confidence, 0, 100),
		Reasoning:       strings.TrimSpace(raw.Reasoning),
	}
}

func clamp(v float64, lo, hi int) int {
	n := int(v)
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func (q *Qualifier) buildPrompt(c *models.Comment) string {
	var sb strings.Builder
	sb.WriteString(`You qualify YouTube comments for a meditation-program outreach team.

Analyze the comment below and judge the commenter's pain signal and
enrollment readiness.

intent_type must be ONE of: physical_pain, mental_pain, discipline,
spiritual, practice_aligned, low_intent.

`)
	fmt.Fprintf(&sb, "Comment by %s:\n%q\n", c.Author, c.Text)

	if s := c.Signals; s != nil && len(s.KeywordsFound) > 0 {
		fmt.Fprintf(&sb, "\nPreliminary keyword scan (advisory only): intent=%s, score=%d/10, keywords=%s",
			s.PreliminaryIntent, s.PreliminaryPainScore, strings.Join(s.KeywordsFound, ", "))
		if len(s.PracticeMentions) > 0 {
			fmt.Fprintf(&sb, ", practices=%s", strings.Join(s.PracticeMentions, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`
Respond with ONLY a JSON object:
{
  "intent_type": "...",
  "pain_intensity": 0-10,
  "readiness_score": 0-100,
  "practice_mention": "practice name or empty string",
  "confidence": 0-100,
  "reasoning": "one or two sentences"
}`)
	return sb.String()
}

// QualifyBatch annotates every comment with its qualification and reports
// tier counts.
func (q *Qualifier) QualifyBatch(ctx context.Context, comments []*models.Comment) {
	tiers := make(map[models.IntentTier]int)
	types := make(map[models.IntentType]int)

	for _, c := range comments {
		qual := q.Classify(ctx, c)
		c.Qualification = &qual
		tiers[qual.Tier()]++
		types[qual.IntentType]++
	}

	log.Printf("Qualified %d comments: High=%d Medium=%d Low=%d", len(comments),
		tiers[models.TierHigh], tiers[models.TierMedium], tiers[models.TierLow])
	log.Printf("  By type: spiritual=%d mental=%d discipline=%d physical=%d practice=%d low=%d",
		types[models.IntentSpiritual], types[models.IntentMentalPain], types[models.IntentDiscipline],
		types[models.IntentPhysicalPain], types[models.IntentPracticeAligned], types[models.IntentLowIntent])
}
