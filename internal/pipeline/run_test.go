package pipeline

import (
	"context"
	"testing"

	"github.com/sadhaka-labs/leadstream/config"
	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/sadhaka-labs/leadstream/internal/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	comments []*models.Comment
}

func (f *fakeScraper) SearchChannels(ctx context.Context, term string, minSubscribers int64, max int) ([]youtube.Channel, error) {
	return []youtube.Channel{{ID: "ch1", Title: "Test Channel", Subscribers: 500000}}, nil
}

func (f *fakeScraper) RecentVideos(ctx context.Context, channelID string, daysBack, max int) ([]youtube.Video, error) {
	return []youtube.Video{{ID: "v1", Title: "Test Video"}}, nil
}

func (f *fakeScraper) VideoComments(ctx context.Context, video youtube.Video, max int) ([]*models.Comment, error) {
	return f.comments, nil
}

func (f *fakeScraper) QuotaUsed() int { return 102 }

type fakeClassifier struct{}

func (f *fakeClassifier) QualifyBatch(ctx context.Context, comments []*models.Comment) {
	for _, c := range comments {
		c.Qualification = &models.Qualification{
			IntentType:     models.IntentSpiritual,
			PainIntensity:  6,
			ReadinessScore: 75,
		}
	}
}

type fakeLeadWriter struct {
	failAll bool
}

func (f *fakeLeadWriter) BatchCreate(ctx context.Context, leads []*models.Lead) (created, failed []*models.Lead) {
	if f.failAll {
		return nil, leads
	}
	for i, lead := range leads {
		lead.ID = "lead-" + string(rune('a'+i))
	}
	return leads, nil
}

type fakeFallbackSaver struct {
	saved int
	err   error
}

func (f *fakeFallbackSaver) Save(leads []*models.Lead) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.saved += len(leads)
	return "data/leads_test.json", nil
}

type fakeThreadCreator struct {
	created int
}

func (f *fakeThreadCreator) CreateThreadForLead(ctx context.Context, lead *models.Lead) (*models.ConversationThread, error) {
	f.created++
	return models.NewThread(lead), nil
}

type fakeNotifier struct {
	highIntent int
	summaries  int
	errors     int
}

func (f *fakeNotifier) NotifyHighIntentLead(lead *models.Lead) { f.highIntent++ }

func (f *fakeNotifier) NotifyRunSummary(scraped, qualified, stored, threads int) { f.summaries++ }

func (f *fakeNotifier) NotifyError(stage string, err error) { f.errors++ }

func testRunConfig() *config.Config {
	return &config.Config{
		SearchTerms:         "test term",
		DaysBack:            7,
		MaxVideosPerChannel: 5,
		MaxCommentsPerVideo: 50,
		MinSubscriberCount:  100000,
	}
}

func alwaysGate(lead *models.Lead) bool { return true }

func newTestRunner(scraper Scraper, writer LeadWriter, fallback FallbackSaver,
	threads ThreadCreator, notifier LeadNotifier) *Runner {
	return NewRunner(testRunConfig(), scraper,
		NewDedupIndex(&fakeLeadChecker{}), &fakeClassifier{},
		writer, fallback, threads, notifier, alwaysGate)
}

func TestRunHappyPath(t *testing.T) {
	scraper := &fakeScraper{comments: []*models.Comment{
		{Author: "a", Platform: "youtube", Text: "I have been struggling with anxiety for years and want help"},
		{Author: "b", Platform: "youtube", Text: "what a wonderful and truly blessed video this has been"},
	}}
	threads := &fakeThreadCreator{}
	notifier := &fakeNotifier{}

	runner := newTestRunner(scraper, &fakeLeadWriter{}, &fakeFallbackSaver{}, threads, notifier)
	metrics, err := runner.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Scraped)
	assert.Equal(t, 1, metrics.Prefiltered)
	assert.Equal(t, 1, metrics.Qualified)
	assert.Equal(t, 1, metrics.Stored)
	assert.Equal(t, 1, metrics.ThreadsCreated)
	assert.Equal(t, 102, metrics.QuotaUsed)
	assert.Equal(t, 1, threads.created)
	assert.Equal(t, 1, notifier.summaries)
	// spiritual with readiness 75 is a High-tier lead
	assert.Equal(t, 1, notifier.highIntent)
}

func TestRunEmptyScrape(t *testing.T) {
	runner := newTestRunner(&fakeScraper{}, &fakeLeadWriter{}, &fakeFallbackSaver{},
		&fakeThreadCreator{}, &fakeNotifier{})

	metrics, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, metrics.Scraped)
	assert.Zero(t, metrics.Stored)
}

func TestRunStorageFailureUsesFallback(t *testing.T) {
	scraper := &fakeScraper{comments: []*models.Comment{
		{Author: "a", Platform: "youtube", Text: "I have been struggling with anxiety for years and want help"},
	}}
	fallback := &fakeFallbackSaver{}

	runner := newTestRunner(scraper, &fakeLeadWriter{failAll: true}, fallback,
		&fakeThreadCreator{}, &fakeNotifier{})

	metrics, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, metrics.Stored)
	assert.Equal(t, 1, metrics.FallbackSaved)
	assert.Equal(t, 1, fallback.saved)
}

func TestRunFailsWhenNothingPersisted(t *testing.T) {
	scraper := &fakeScraper{comments: []*models.Comment{
		{Author: "a", Platform: "youtube", Text: "I have been struggling with anxiety for years and want help"},
	}}
	notifier := &fakeNotifier{}

	runner := newTestRunner(scraper, &fakeLeadWriter{failAll: true},
		&fakeFallbackSaver{err: assert.AnError}, &fakeThreadCreator{}, notifier)

	_, err := runner.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoLeadsStored)
	assert.Equal(t, 1, notifier.errors)
}
