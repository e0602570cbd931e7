package planner

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"fitai-planner-be/pkg/events"
	"fitai-planner-be/pkg/extract"
	"fitai-planner-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = "Male, 34, 92kg, desk job, knee pain, wants to lose weight"

func newTestPlanPipeline(provider llm.LLMProvider, store PlanStore, opts ...Option) *PlanPipeline {
	base := []Option{WithPacer(func() Pacer { return NoPacer{} }), WithClock(tickingClock())}
	return NewPlanPipeline(newTestInvoker(provider), extract.NewExtractor(nil), store, testPrompts(), append(base, opts...)...)
}

func TestPlanPipeline_Run(t *testing.T) {
	provider := newScriptedProvider(
		answer(`{"summary": "risk LOW, focus on knee-friendly cardio"}`),
		answer("Here you go:\n```json\n{\"summary\": \"3 day full body\", \"duration_weeks\": 8}\n```"),
		answer("Eat more vegetables."),
	)
	store := newMemStore()
	publisher := &recordingPublisher{}
	pacer := &countingPacer{}

	pipeline := newTestPlanPipeline(provider, store,
		WithPublisher(publisher),
		WithPacer(func() Pacer { return pacer }),
	)

	run, err := pipeline.Run(context.Background(), PlanInput{UserId: "user-1", Profile: testProfile})
	require.NoError(t, err)

	t.Run("stages run in order", func(t *testing.T) {
		require.Len(t, run.Stages, 3)
		assert.Equal(t, StageReasoning, run.Stages[0].Role)
		assert.Equal(t, StageWorkout, run.Stages[1].Role)
		assert.Equal(t, StageMeal, run.Stages[2].Role)
		assert.True(t, run.Stages[0].StartedAt.Before(run.Stages[1].StartedAt))
		assert.True(t, run.Stages[1].StartedAt.Before(run.Stages[2].StartedAt))
		assert.Equal(t, 3, pacer.waits)
		assert.Equal(t, 3, pacer.dones)
	})

	t.Run("requests carry system prompt and context", func(t *testing.T) {
		calls := provider.Calls()
		require.Len(t, calls, 3)

		assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "SYSTEM reasoning"}, calls[0][0])
		assert.Contains(t, calls[0][1].Content, testProfile)

		for i, system := range []string{"SYSTEM workout", "SYSTEM meal"} {
			msgs := calls[i+1]
			require.Len(t, msgs, 2)
			assert.Equal(t, system, msgs[0].Content)
			assert.Contains(t, msgs[1].Content, testProfile)
			assert.Contains(t, msgs[1].Content, "knee-friendly cardio")
			assert.Contains(t, msgs[1].Content, "FORMAT sections")
		}
	})

	t.Run("record persisted once", func(t *testing.T) {
		assert.Equal(t, StateDone, run.State)
		require.NotNil(t, run.Record)
		assert.Equal(t, 1, store.Len())

		stored, err := store.ById(context.Background(), run.Record.Id)
		require.NoError(t, err)
		assert.Equal(t, "user-1", stored.UserId)
		assert.Equal(t, extract.Document{ProfileTextField: testProfile}, stored.Profile)
		assert.Equal(t, "3 day full body", stored.Workout.Primary())
		assert.Equal(t, "Eat more vegetables.", stored.Meal.Primary())
		assert.Equal(t, "risk LOW, focus on knee-friendly cardio", stored.Reasoning.Primary())
		assert.Nil(t, stored.UpdatedAt)
	})

	t.Run("session log holds every turn", func(t *testing.T) {
		assert.Equal(t, 6, run.Session.Len())
		assert.Equal(t, "user-1", run.Session.UserId)
	})

	t.Run("event published", func(t *testing.T) {
		require.Len(t, publisher.events, 1)
		assert.Equal(t, EventPlanGenerated, publisher.events[0].EventType())
		assert.Equal(t, run.Record.Id.String(), events.PlanId(publisher.events[0]))
	})
}

func TestPlanPipeline_RetryBudget(t *testing.T) {
	t.Run("two transient failures then success", func(t *testing.T) {
		provider := newScriptedProvider(
			fails(http.StatusTooManyRequests),
			fails(http.StatusServiceUnavailable),
			answer(`{"summary": "analysis"}`),
			answer(`{"summary": "workout"}`),
			answer(`{"summary": "meal"}`),
		)
		store := newMemStore()

		run, err := newTestPlanPipeline(provider, store).Run(context.Background(), PlanInput{UserId: "u", Profile: testProfile})
		require.NoError(t, err)
		assert.Equal(t, 3, run.Stages[0].Attempts)
		assert.Equal(t, 1, run.Stages[1].Attempts)
		assert.Len(t, provider.Calls(), 5)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("three transient failures abort without a fourth attempt", func(t *testing.T) {
		provider := newScriptedProvider(
			fails(http.StatusTooManyRequests),
			fails(http.StatusTooManyRequests),
			fails(http.StatusTooManyRequests),
			answer(`{"summary": "never reached"}`),
		)
		store := newMemStore()

		run, err := newTestPlanPipeline(provider, store).Run(context.Background(), PlanInput{UserId: "u", Profile: testProfile})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRetriesExhausted)

		var pErr *PipelineError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, StateReasoning, pErr.State)
		assert.Equal(t, StateFailed, run.State)
		assert.Nil(t, run.Record)
		assert.Len(t, provider.Calls(), 3)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("fatal error is not retried", func(t *testing.T) {
		provider := newScriptedProvider(
			answer(`{"summary": "analysis"}`),
			fails(http.StatusUnauthorized),
		)

		_, err := newTestPlanPipeline(provider, newMemStore()).Run(context.Background(), PlanInput{UserId: "u", Profile: testProfile})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrRetriesExhausted)

		var provErr *llm.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, http.StatusUnauthorized, provErr.Status)

		var pErr *PipelineError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, StateWorkout, pErr.State)
		assert.Len(t, provider.Calls(), 2)
	})
}

func TestPlanPipeline_Failures(t *testing.T) {
	t.Run("empty profile", func(t *testing.T) {
		provider := newScriptedProvider()

		_, err := newTestPlanPipeline(provider, newMemStore()).Run(context.Background(), PlanInput{UserId: "u", Profile: "  "})
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Empty(t, provider.Calls())
	})

	t.Run("store error", func(t *testing.T) {
		provider := newScriptedProvider(answer("a"), answer("b"), answer("c"))
		store := newMemStore()
		store.insertErr = errors.New("connection refused")

		run, err := newTestPlanPipeline(provider, store).Run(context.Background(), PlanInput{UserId: "u", Profile: testProfile})
		require.Error(t, err)

		var pErr *PipelineError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, StatePersist, pErr.State)
		assert.Nil(t, run.Record)
		assert.Len(t, run.Stages, 3)
	})

	t.Run("publish failure does not fail the run", func(t *testing.T) {
		provider := newScriptedProvider(answer("a"), answer("b"), answer("c"))
		publisher := &recordingPublisher{err: errors.New("bus closed")}

		run, err := newTestPlanPipeline(provider, newMemStore(), WithPublisher(publisher)).Run(context.Background(), PlanInput{UserId: "u", Profile: testProfile})
		require.NoError(t, err)
		assert.Equal(t, StateDone, run.State)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		provider := newScriptedProvider(answer("a"))

		_, err := newTestPlanPipeline(provider, newMemStore()).Run(ctx, PlanInput{UserId: "u", Profile: testProfile})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, provider.Calls())
	})
}

func TestPlanPipeline_DegradedExtractionStillPersists(t *testing.T) {
	provider := newScriptedProvider(answer("plain reasoning"), answer(""), answer("{broken"))
	store := newMemStore()

	run, err := newTestPlanPipeline(provider, store).Run(context.Background(), PlanInput{UserId: "u", Profile: testProfile})
	require.NoError(t, err)

	assert.Equal(t, extract.EmptyResponsePlaceholder, run.Record.Workout.Primary())
	assert.Equal(t, "{broken", run.Record.Meal.Primary())
	assert.Equal(t, "{broken", run.Record.Meal[extract.RawResponseField])
}

func TestPlanPipeline_SeparateRunsShareNothing(t *testing.T) {
	provider := newScriptedProvider(answer("a"), answer("b"), answer("c"), answer("d"), answer("e"), answer("f"))
	pipeline := newTestPlanPipeline(provider, newMemStore())

	first, err := pipeline.Run(context.Background(), PlanInput{UserId: "u1", Profile: testProfile})
	require.NoError(t, err)
	second, err := pipeline.Run(context.Background(), PlanInput{UserId: "u2", Profile: testProfile})
	require.NoError(t, err)

	assert.NotEqual(t, first.Session.ID, second.Session.ID)
	assert.NotEqual(t, first.Record.Id, second.Record.Id)
	assert.Equal(t, 6, second.Session.Len())
}
