package conversation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sadhaka-labs/leadstream/internal/models"
)

// threadReadinessThreshold is the readiness score at which a lead gets a
// thread even without strong pain or practice alignment.
const threadReadinessThreshold = 60

// threadPainThreshold is the pain intensity at which a lead gets a thread
// regardless of readiness.
const threadPainThreshold = 5

// ThreadStore is the thread persistence surface the tracker needs.
type ThreadStore interface {
	Create(ctx context.Context, thread *models.ConversationThread) error
	GetByLeadID(ctx context.Context, leadID string) (*models.ConversationThread, error)
	Update(ctx context.Context, thread *models.ConversationThread) error
}

// Tracker owns the lifecycle of conversation threads: which leads get one,
// how the stage and history advance, and when a thread closes.
type Tracker struct {
	store ThreadStore
}

func NewTracker(store ThreadStore) *Tracker {
	return &Tracker{store: store}
}

// ShouldCreateThread reports whether a qualified lead warrants a
// conversation. Low-intent leads never get a thread, whatever their scores.
func ShouldCreateThread(lead *models.Lead) bool {
	q := lead.Qualification
	if q.IntentType == models.IntentLowIntent {
		return false
	}
	return q.ReadinessScore >= threadReadinessThreshold ||
		q.PainIntensity >= threadPainThreshold ||
		q.IntentType == models.IntentPracticeAligned
}

// CreateThreadForLead creates a thread for the lead, or returns the existing
// one. Safe to call repeatedly for the same lead.
func (t *Tracker) CreateThreadForLead(ctx context.Context, lead *models.Lead) (*models.ConversationThread, error) {
	existing, err := t.store.GetByLeadID(ctx, lead.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up thread for lead %s: %w", lead.ID, err)
	}
	if existing != nil {
		return existing, nil
	}

	thread := models.NewThread(lead)
	if err := t.store.Create(ctx, thread); err != nil {
		// Lost a race with another creator; re-read the winner.
		if again, lookupErr := t.store.GetByLeadID(ctx, lead.ID); lookupErr == nil && again != nil {
			return again, nil
		}
		return nil, fmt.Errorf("failed to create thread for lead %s: %w", lead.ID, err)
	}

	log.Printf("Created thread %s for %s (%s, readiness %d)",
		thread.ID, lead.Author, thread.PainType, thread.ReadinessScore)
	return thread, nil
}

// UpdateWithReply appends our posted reply to the thread history and
// advances the stage. When theirMessage is non-empty it is recorded first,
// so a full exchange advances the stage by two.
func (t *Tracker) UpdateWithReply(ctx context.Context, thread *models.ConversationThread, ourReply, theirMessage string) error {
	if thread.Status.Terminal() {
		return fmt.Errorf("thread %s is %s, cannot update", thread.ID, thread.Status)
	}

	now := time.Now()
	if theirMessage != "" {
		thread.FullHistory += historyEntry(thread.Stage, "Their Response", now, theirMessage)
		thread.Stage++
	}
	thread.FullHistory += historyEntry(thread.Stage, "Our Reply", now, ourReply)
	thread.Stage++
	thread.LastReplyDate = &now

	if err := t.store.Update(ctx, thread); err != nil {
		return fmt.Errorf("failed to update thread %s: %w", thread.ID, err)
	}
	return nil
}

// MarkResourceShared records that a resource went out on this thread.
func (t *Tracker) MarkResourceShared(ctx context.Context, thread *models.ConversationThread, resourceName string) error {
	for _, shared := range thread.ResourcesShared {
		if shared == resourceName {
			return nil
		}
	}
	thread.ResourcesShared = append(thread.ResourcesShared, resourceName)

	if err := t.store.Update(ctx, thread); err != nil {
		return fmt.Errorf("failed to record shared resource on thread %s: %w", thread.ID, err)
	}
	return nil
}

// UpdateReadiness replaces the thread's readiness estimate. Out-of-range
// values are ignored.
func (t *Tracker) UpdateReadiness(ctx context.Context, thread *models.ConversationThread, readiness int) error {
	if readiness < 0 || readiness > 100 {
		return nil
	}
	if readiness == thread.ReadinessScore {
		return nil
	}
	thread.ReadinessScore = readiness

	if err := t.store.Update(ctx, thread); err != nil {
		return fmt.Errorf("failed to update readiness on thread %s: %w", thread.ID, err)
	}
	return nil
}

// Close moves a thread into a terminal status and stamps the last-reply
// date. Closing an already terminal thread is an error.
func (t *Tracker) Close(ctx context.Context, thread *models.ConversationThread, status models.ThreadStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("%s is not a terminal status", status)
	}
	if thread.Status.Terminal() {
		return fmt.Errorf("thread %s is already %s", thread.ID, thread.Status)
	}
	thread.Status = status
	now := time.Now()
	thread.LastReplyDate = &now

	if err := t.store.Update(ctx, thread); err != nil {
		return fmt.Errorf("failed to close thread %s: %w", thread.ID, err)
	}

	log.Printf("Thread %s closed as %s at stage %d", thread.ID, status, thread.Stage)
	return nil
}

func historyEntry(stage int, role string, ts time.Time, text string) string {
	return fmt.Sprintf("[Stage %d - %s - %s]\n%s\n\n", stage, role, ts.Format("2006-01-02 15:04"), text)
}
