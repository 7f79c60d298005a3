package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/sadhaka-labs/leadstream/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	resources map[string]*models.Resource
}

func (f *fakeCatalog) GetResourceByName(ctx context.Context, name string) (*models.Resource, error) {
	return f.resources[name], nil
}

var testResponder = models.Responder{
	Name:       "Priya",
	Role:       "volunteer teacher",
	Experience: "12 years of practice",
	Tone:       "warm",
	SignOff:    "With love, Priya",
}

func activeThread(stage, readiness int) *models.ConversationThread {
	return &models.ConversationThread{
		ID:             "t1",
		Author:         "seeker",
		Stage:          stage,
		Status:         models.ThreadActive,
		PainType:       models.IntentSpiritual,
		ReadinessScore: readiness,
	}
}

func draftResponse(reply string, share bool, resource string) string {
	return `{"reply": "` + reply + `", "should_share_resource": ` +
		map[bool]string{true: "true", false: "false"}[share] +
		`, "suggested_resource": "` + resource + `", "estimated_readiness": 70, "tone": "compassionate", "next_action": "wait_for_response"}`
}

func TestShouldGenerateReplyForThread(t *testing.T) {
	t.Run("active below cap", func(t *testing.T) {
		assert.True(t, ShouldGenerateReplyForThread(activeThread(2, 50)))
	})

	t.Run("at stage cap", func(t *testing.T) {
		assert.False(t, ShouldGenerateReplyForThread(activeThread(5, 90)))
	})

	t.Run("terminal thread", func(t *testing.T) {
		thread := activeThread(1, 50)
		thread.Status = models.ThreadCompleted
		assert.False(t, ShouldGenerateReplyForThread(thread))
	})
}

func catalogResource() *models.Resource {
	return &models.Resource{
		Name:        "Isha Kriya",
		Description: "free guided meditation",
		Link:        "https://example.org/ik",
		PainTypes:   []models.IntentType{models.IntentSpiritual, models.IntentMentalPain},
		Active:      true,
	}
}

func TestGenerateSuppressesResourceAtStageZero(t *testing.T) {
	catalog := &fakeCatalog{resources: map[string]*models.Resource{
		"Isha Kriya": catalogResource(),
	}}
	backend := &fakeBackend{responses: []string{draftResponse("Welcome!", true, "Isha Kriya")}}

	g := NewReplyGenerator(backend, catalog)
	draft := g.Generate(context.Background(), activeThread(0, 90), testResponder)

	assert.False(t, draft.ShouldShareResource)
	assert.Empty(t, draft.SuggestedResource)
	assert.Nil(t, draft.Resource)
	assert.Equal(t, "Welcome!", draft.Text)
}

func TestGenerateSuppressesResourceBelowReadiness(t *testing.T) {
	catalog := &fakeCatalog{resources: map[string]*models.Resource{
		"Isha Kriya": catalogResource(),
	}}
	backend := &fakeBackend{responses: []string{draftResponse("Here you go", true, "Isha Kriya")}}

	g := NewReplyGenerator(backend, catalog)
	draft := g.Generate(context.Background(), activeThread(2, 40), testResponder)

	assert.False(t, draft.ShouldShareResource)
}

func TestGenerateAttachesResolvedResource(t *testing.T) {
	catalog := &fakeCatalog{resources: map[string]*models.Resource{
		"Isha Kriya": catalogResource(),
	}}
	backend := &fakeBackend{responses: []string{draftResponse("Glad to hear it", true, "Isha Kriya")}}

	g := NewReplyGenerator(backend, catalog)
	draft := g.Generate(context.Background(), activeThread(2, 75), testResponder)

	require.True(t, draft.ShouldShareResource)
	require.NotNil(t, draft.Resource)
	assert.Contains(t, draft.Text, "https://example.org/ik")
	assert.Contains(t, draft.Text, testResponder.SignOff)
}

func TestGenerateEnforcesResourceConstraints(t *testing.T) {
	backend := func() *fakeBackend {
		return &fakeBackend{responses: []string{draftResponse("Here you go", true, "Isha Kriya")}}
	}

	t.Run("resource min readiness binds above the global rule", func(t *testing.T) {
		resource := catalogResource()
		resource.MinReadiness = 80
		catalog := &fakeCatalog{resources: map[string]*models.Resource{"Isha Kriya": resource}}

		g := NewReplyGenerator(backend(), catalog)
		draft := g.Generate(context.Background(), activeThread(2, 75), testResponder)

		assert.False(t, draft.ShouldShareResource)
		assert.Nil(t, draft.Resource)
	})

	t.Run("pain type must be covered", func(t *testing.T) {
		resource := catalogResource()
		resource.PainTypes = []models.IntentType{models.IntentPhysicalPain}
		catalog := &fakeCatalog{resources: map[string]*models.Resource{"Isha Kriya": resource}}

		g := NewReplyGenerator(backend(), catalog)
		draft := g.Generate(context.Background(), activeThread(2, 75), testResponder)

		assert.False(t, draft.ShouldShareResource)
	})

	t.Run("inactive resource never attaches", func(t *testing.T) {
		resource := catalogResource()
		resource.Active = false
		catalog := &fakeCatalog{resources: map[string]*models.Resource{"Isha Kriya": resource}}

		g := NewReplyGenerator(backend(), catalog)
		draft := g.Generate(context.Background(), activeThread(2, 75), testResponder)

		assert.False(t, draft.ShouldShareResource)
	})
}

func TestGenerateDropsUnresolvedResource(t *testing.T) {
	catalog := &fakeCatalog{resources: map[string]*models.Resource{}}
	backend := &fakeBackend{responses: []string{draftResponse("Sure thing", true, "Nonexistent Course")}}

	g := NewReplyGenerator(backend, catalog)
	draft := g.Generate(context.Background(), activeThread(2, 75), testResponder)

	assert.False(t, draft.ShouldShareResource)
	assert.Nil(t, draft.Resource)
	assert.Equal(t, "Sure thing", draft.Text)
}

func TestGenerateFallbackOnBackendFailure(t *testing.T) {
	backend := &fakeBackend{errs: []error{errors.New("model down")}}

	g := NewReplyGenerator(backend, &fakeCatalog{})

	t.Run("spiritual", func(t *testing.T) {
		draft := g.Generate(context.Background(), activeThread(1, 50), testResponder)
		assert.Contains(t, draft.Text, "seeker")
		assert.Contains(t, draft.Text, "deeper meaning")
		assert.False(t, draft.ShouldShareResource)
	})

	t.Run("unnamed author", func(t *testing.T) {
		backend := &fakeBackend{errs: []error{errors.New("model down")}}
		g := NewReplyGenerator(backend, &fakeCatalog{})
		thread := activeThread(1, 50)
		thread.Author = ""
		thread.PainType = models.IntentLowIntent
		draft := g.Generate(context.Background(), thread, testResponder)
		assert.Contains(t, draft.Text, "friend")
	})
}

func TestGenerateFallbackOnEmptyReply(t *testing.T) {
	backend := &fakeBackend{responses: []string{`{"reply": "  ", "should_share_resource": false}`}}

	g := NewReplyGenerator(backend, &fakeCatalog{})
	thread := activeThread(1, 50)
	thread.PainType = models.IntentMentalPain
	draft := g.Generate(context.Background(), thread, testResponder)

	assert.Contains(t, draft.Text, "takes courage")
}
