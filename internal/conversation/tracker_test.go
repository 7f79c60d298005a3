package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeThreadStore struct {
	byLead    map[string]*models.ConversationThread
	createErr error
	updates   int
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{byLead: make(map[string]*models.ConversationThread)}
}

func (f *fakeThreadStore) Create(ctx context.Context, thread *models.ConversationThread) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byLead[thread.LeadID]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	thread.ID = "thread-" + thread.LeadID
	f.byLead[thread.LeadID] = thread
	return nil
}

func (f *fakeThreadStore) GetByLeadID(ctx context.Context, leadID string) (*models.ConversationThread, error) {
	return f.byLead[leadID], nil
}

func (f *fakeThreadStore) Update(ctx context.Context, thread *models.ConversationThread) error {
	f.updates++
	return nil
}

func qualifiedLead(intent models.IntentType, pain, readiness int) *models.Lead {
	return &models.Lead{
		ID:     "lead-1",
		Author: "seeker",
		Qualification: models.Qualification{
			IntentType:     intent,
			PainIntensity:  pain,
			ReadinessScore: readiness,
		},
	}
}

func TestShouldCreateThread(t *testing.T) {
	tests := []struct {
		name string
		lead *models.Lead
		want bool
	}{
		{"low intent never qualifies", qualifiedLead(models.IntentLowIntent, 9, 90), false},
		{"high readiness", qualifiedLead(models.IntentSpiritual, 2, 60), true},
		{"high pain", qualifiedLead(models.IntentDiscipline, 5, 20), true},
		{"practice aligned", qualifiedLead(models.IntentPracticeAligned, 0, 0), true},
		{"weak signals", qualifiedLead(models.IntentMentalPain, 4, 59), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldCreateThread(tt.lead))
		})
	}
}

func TestCreateThreadForLead(t *testing.T) {
	t.Run("creates once", func(t *testing.T) {
		store := newFakeThreadStore()
		tracker := NewTracker(store)
		lead := qualifiedLead(models.IntentSpiritual, 6, 70)

		thread, err := tracker.CreateThreadForLead(context.Background(), lead)
		require.NoError(t, err)
		assert.Equal(t, lead.ID, thread.LeadID)
		assert.Equal(t, 0, thread.Stage)
		assert.Equal(t, models.ThreadActive, thread.Status)
		assert.Equal(t, models.IntentSpiritual, thread.PainType)
	})

	t.Run("idempotent for the same lead", func(t *testing.T) {
		store := newFakeThreadStore()
		tracker := NewTracker(store)
		lead := qualifiedLead(models.IntentSpiritual, 6, 70)

		first, err := tracker.CreateThreadForLead(context.Background(), lead)
		require.NoError(t, err)
		second, err := tracker.CreateThreadForLead(context.Background(), lead)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, store.byLead, 1)
	})
}

func TestUpdateWithReply(t *testing.T) {
	store := newFakeThreadStore()
	tracker := NewTracker(store)
	lead := qualifiedLead(models.IntentMentalPain, 7, 65)

	thread, err := tracker.CreateThreadForLead(context.Background(), lead)
	require.NoError(t, err)

	t.Run("first reply advances one stage", func(t *testing.T) {
		err := tracker.UpdateWithReply(context.Background(), thread, "Thanks for sharing", "")
		require.NoError(t, err)
		assert.Equal(t, 1, thread.Stage)
		assert.Contains(t, thread.FullHistory, "[Stage 0 - Our Reply")
		assert.Contains(t, thread.FullHistory, "Thanks for sharing")
		require.NotNil(t, thread.LastReplyDate)
	})

	t.Run("exchange advances two stages", func(t *testing.T) {
		err := tracker.UpdateWithReply(context.Background(), thread, "Glad it helped", "It really helped me")
		require.NoError(t, err)
		assert.Equal(t, 3, thread.Stage)
		assert.Contains(t, thread.FullHistory, "[Stage 1 - Their Response")
		assert.Contains(t, thread.FullHistory, "[Stage 2 - Our Reply")
	})

	t.Run("history is append-only", func(t *testing.T) {
		assert.Contains(t, thread.FullHistory, "Thanks for sharing")
		assert.Contains(t, thread.FullHistory, "It really helped me")
	})

	t.Run("terminal thread rejects updates", func(t *testing.T) {
		thread.Status = models.ThreadCompleted
		err := tracker.UpdateWithReply(context.Background(), thread, "one more", "")
		assert.Error(t, err)
		assert.Equal(t, 3, thread.Stage)
	})
}

func TestMarkResourceShared(t *testing.T) {
	store := newFakeThreadStore()
	tracker := NewTracker(store)
	thread := &models.ConversationThread{ID: "t", Status: models.ThreadActive, ResourcesShared: []string{}}

	require.NoError(t, tracker.MarkResourceShared(context.Background(), thread, "Isha Kriya"))
	require.NoError(t, tracker.MarkResourceShared(context.Background(), thread, "Isha Kriya"))

	assert.Equal(t, []string{"Isha Kriya"}, thread.ResourcesShared)
	assert.Equal(t, 1, store.updates)
}

func TestUpdateReadiness(t *testing.T) {
	store := newFakeThreadStore()
	tracker := NewTracker(store)
	thread := &models.ConversationThread{ID: "t", Status: models.ThreadActive, ReadinessScore: 50}

	require.NoError(t, tracker.UpdateReadiness(context.Background(), thread, 75))
	assert.Equal(t, 75, thread.ReadinessScore)

	// Out-of-range estimates are ignored.
	require.NoError(t, tracker.UpdateReadiness(context.Background(), thread, 150))
	assert.Equal(t, 75, thread.ReadinessScore)
	require.NoError(t, tracker.UpdateReadiness(context.Background(), thread, -1))
	assert.Equal(t, 75, thread.ReadinessScore)
}

func TestClose(t *testing.T) {
	store := newFakeThreadStore()
	tracker := NewTracker(store)

	t.Run("closes with terminal status", func(t *testing.T) {
		thread := &models.ConversationThread{ID: "t", Status: models.ThreadActive}
		require.NoError(t, tracker.Close(context.Background(), thread, models.ThreadConverted))
		assert.Equal(t, models.ThreadConverted, thread.Status)
		require.NotNil(t, thread.LastReplyDate)
	})

	t.Run("stamps last-reply date even without a prior reply", func(t *testing.T) {
		thread := &models.ConversationThread{ID: "t", Status: models.ThreadActive}
		require.Nil(t, thread.LastReplyDate)
		require.NoError(t, tracker.Close(context.Background(), thread, models.ThreadNoResponse))
		require.NotNil(t, thread.LastReplyDate)
		assert.WithinDuration(t, time.Now(), *thread.LastReplyDate, time.Minute)
	})

	t.Run("rejects non-terminal status", func(t *testing.T) {
		thread := &models.ConversationThread{ID: "t", Status: models.ThreadActive}
		assert.Error(t, tracker.Close(context.Background(), thread, models.ThreadActive))
	})

	t.Run("rejects double close", func(t *testing.T) {
		thread := &models.ConversationThread{ID: "t", Status: models.ThreadCompleted}
		assert.Error(t, tracker.Close(context.Background(), thread, models.ThreadConverted))
	})
}
