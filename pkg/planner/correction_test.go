package planner

import (
	"context"
	"testing"
	"time"

	"fitai-planner-be/pkg/extract"
	"fitai-planner-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCorrectionPipeline(provider llm.LLMProvider, store PlanStore, opts ...Option) *CorrectionPipeline {
	base := []Option{WithPacer(func() Pacer { return NoPacer{} }), WithClock(tickingClock())}
	return NewCorrectionPipeline(newTestInvoker(provider), extract.NewExtractor(nil), store, testPrompts(), append(base, opts...)...)
}

func TestCorrectionPipeline_WorkoutOnly(t *testing.T) {
	seed := seededRecord("user-1", time.Now().Add(-time.Hour))
	store := newMemStore(seed)
	provider := newScriptedProvider(answer(`{"summary": "leg press instead of squats"}`))
	publisher := &recordingPublisher{}

	run, err := newTestCorrectionPipeline(provider, store, WithPublisher(publisher)).Correct(context.Background(), CorrectionRequest{
		UserId:      "user-1",
		Instruction: "Replace squats with leg press",
		Target:      TargetWorkout,
	})
	require.NoError(t, err)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "SYSTEM workout", calls[0][0].Content)
	assert.Contains(t, calls[0][1].Content, "Replace squats with leg press")
	assert.Contains(t, calls[0][1].Content, "old workout")
	assert.Contains(t, calls[0][1].Content, "30 y/o, beginner")
	assert.NotContains(t, calls[0][1].Content, "old meal")

	assert.Equal(t, seed.Id, run.Record.Id)
	assert.Equal(t, "leg press instead of squats", run.Record.Workout.Primary())
	assert.Equal(t, seed.Meal, run.Record.Meal)
	assert.Equal(t, seed.Reasoning, run.Record.Reasoning)
	require.NotNil(t, run.Record.UpdatedAt)

	stored, err := store.ById(context.Background(), seed.Id)
	require.NoError(t, err)
	assert.Equal(t, seed.Meal, stored.Meal)
	assert.Equal(t, run.Record.Workout, stored.Workout)

	require.Len(t, store.updates, 1)
	assert.Nil(t, store.updates[0].Meal)
	assert.Nil(t, store.updates[0].Reasoning)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, EventPlanCorrected, publisher.events[0].EventType())
	assert.Equal(t, "workout", publisher.events[0].Payload()["target"])
}

func TestCorrectionPipeline_Both(t *testing.T) {
	seed := seededRecord("user-1", time.Now().Add(-time.Hour))
	store := newMemStore(seed)
	provider := newScriptedProvider(
		answer(`{"summary": "new workout"}`),
		answer("```json\n{\"summary\": \"vegetarian meals\"}\n```"),
	)
	pacer := &countingPacer{}

	run, err := newTestCorrectionPipeline(provider, store, WithPacer(func() Pacer { return pacer })).Correct(context.Background(), CorrectionRequest{
		UserId:      "user-1",
		Instruction: "Make all meals vegetarian",
		Target:      TargetBoth,
	})
	require.NoError(t, err)

	calls := provider.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "SYSTEM workout", calls[0][0].Content)
	assert.Equal(t, "SYSTEM meal", calls[1][0].Content)
	assert.Equal(t, 2, pacer.waits)

	require.Len(t, run.Stages, 2)
	assert.True(t, run.Stages[0].FinishedAt.Before(run.Stages[1].StartedAt))
	assert.Equal(t, "new workout", run.Record.Workout.Primary())
	assert.Equal(t, "vegetarian meals", run.Record.Meal.Primary())
	assert.Len(t, store.updates, 2)
	assert.Equal(t, 4, run.Session.Len())
}

func TestCorrectionPipeline_TargetsLatestPlan(t *testing.T) {
	older := seededRecord("user-1", time.Now().Add(-48*time.Hour))
	newer := seededRecord("user-1", time.Now().Add(-time.Hour))
	store := newMemStore(older, newer)
	provider := newScriptedProvider(answer(`{"summary": "lighter meals"}`))

	run, err := newTestCorrectionPipeline(provider, store).Correct(context.Background(), CorrectionRequest{
		UserId:      "user-1",
		Instruction: "Reduce calories by 200",
		Target:      TargetMeal,
	})
	require.NoError(t, err)
	assert.Equal(t, newer.Id, run.Record.Id)

	untouched, err := store.ById(context.Background(), older.Id)
	require.NoError(t, err)
	assert.Equal(t, older.Meal, untouched.Meal)
	assert.Nil(t, untouched.UpdatedAt)
}

func TestCorrectionPipeline_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     CorrectionRequest
		opts    []Option
		wantErr error
	}{
		{
			name:    "unknown user",
			req:     CorrectionRequest{UserId: "unknown-subject", Instruction: "anything", Target: TargetBoth},
			wantErr: ErrPlanNotFound,
		},
		{
			name:    "invalid target",
			req:     CorrectionRequest{UserId: "user-1", Instruction: "anything", Target: "sleep"},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "blank instruction",
			req:     CorrectionRequest{UserId: "user-1", Instruction: " ", Target: TargetMeal},
			wantErr: ErrEmptyInstruction,
		},
		{
			name:    "correction already running",
			req:     CorrectionRequest{UserId: "user-1", Instruction: "anything", Target: TargetMeal},
			opts:    []Option{WithLocker(busyLocker{}, time.Minute)},
			wantErr: ErrCorrectionInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := seededRecord("user-1", time.Now())
			store := newMemStore(seed)
			provider := newScriptedProvider(answer("should not be called"))

			run, err := newTestCorrectionPipeline(provider, store, tt.opts...).Correct(context.Background(), tt.req)
			assert.Nil(t, run)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, provider.Calls())
			assert.Empty(t, store.updates)
		})
	}
}

func TestCorrectionPipeline_FailedStageKeepsStoredPlan(t *testing.T) {
	seed := seededRecord("user-1", time.Now())
	store := newMemStore(seed)
	provider := newScriptedProvider(
		answer(`{"summary": "new workout"}`),
		fails(400),
	)

	_, err := newTestCorrectionPipeline(provider, store).Correct(context.Background(), CorrectionRequest{
		UserId:      "user-1",
		Instruction: "more cardio",
		Target:      TargetBoth,
	})
	require.Error(t, err)

	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, StateMeal, pErr.State)

	stored, err := store.ById(context.Background(), seed.Id)
	require.NoError(t, err)
	assert.Equal(t, "new workout", stored.Workout.Primary())
	assert.Equal(t, seed.Meal, stored.Meal)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"workout", TargetWorkout, false},
		{"MEAL", TargetMeal, false},
		{" both ", TargetBoth, false},
		{"", "", true},
		{"sleep", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTarget)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
