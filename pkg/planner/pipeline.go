package planner

import (
	"context"
	"strings"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/pkg/extract"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RunState is the position of a run in START -> REASONING -> WORKOUT -> MEAL
// -> PERSIST -> DONE. Any state may move to FAILED.
type RunState string

const (
	StateStart     RunState = "start"
	StateReasoning RunState = "reasoning"
	StateWorkout   RunState = "workout"
	StateMeal      RunState = "meal"
	StatePersist   RunState = "persist"
	StateDone      RunState = "done"
	StateFailed    RunState = "failed"
)

// ProfileTextField wraps the free-text profile in the stored profile document.
const ProfileTextField = "profile_text"

type PlanInput struct {
	UserId  string
	Profile string
}

// PlanRun is the outcome of one generation. Record is nil unless State is StateDone.
type PlanRun struct {
	Record  *entity.PlanRecord
	Stages  []StageResult
	Session Session
	State   RunState
}

// PlanPipeline generates a reasoning analysis, a workout plan and a meal plan
// for one user and persists them as a single record.
type PlanPipeline struct {
	runner  stageRunner
	store   PlanStore
	prompts Prompts
	opts    options
	tracer  trace.Tracer
}

func NewPlanPipeline(invoker *Invoker, extractor *extract.Extractor, store PlanStore, prompts Prompts, opts ...Option) *PlanPipeline {
	o := buildOptions(opts)
	return &PlanPipeline{
		runner:  stageRunner{invoker: invoker, extractor: extractor, opts: o},
		store:   store,
		prompts: prompts,
		opts:    o,
		tracer:  otel.Tracer(tracerName),
	}
}

func (p *PlanPipeline) Run(ctx context.Context, in PlanInput) (*PlanRun, error) {
	ctx, span := p.tracer.Start(ctx, "planner.generate", trace.WithAttributes(
		attribute.String("user_id", in.UserId),
	))
	defer span.End()

	run := &PlanRun{Session: NewSession(in.UserId), State: StateStart}
	fail := func(err error) (*PlanRun, error) {
		failedIn := run.State
		run.State = StateFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.opts.logger.Error("PLANNER", "Plan generation failed", map[string]interface{}{
			"user_id": in.UserId,
			"state":   string(failedIn),
			"error":   err.Error(),
		})
		return run, &PipelineError{State: failedIn, Err: err}
	}

	if strings.TrimSpace(in.Profile) == "" {
		return fail(ErrEmptyInput)
	}

	p.opts.logger.Info("PLANNER", "Plan generation started", map[string]interface{}{
		"user_id": in.UserId,
		"session": run.Session.ID,
	})

	pacer := p.opts.pacers()

	run.State = StateReasoning
	reasoning, err := p.stage(ctx, run, pacer, NewStageRequest(StageReasoning, p.prompts.Reasoning, reasoningInput(in.Profile)))
	if err != nil {
		return fail(err)
	}

	reasoningText := reasoning.Document.String()

	run.State = StateWorkout
	workout, err := p.stage(ctx, run, pacer, NewStageRequest(StageWorkout, p.prompts.Workout,
		artifactInput(in.Profile, reasoningText, p.prompts.ResponseFormat)))
	if err != nil {
		return fail(err)
	}

	run.State = StateMeal
	meal, err := p.stage(ctx, run, pacer, NewStageRequest(StageMeal, p.prompts.Meal,
		artifactInput(in.Profile, reasoningText, p.prompts.ResponseFormat)))
	if err != nil {
		return fail(err)
	}

	run.State = StatePersist
	record := &entity.PlanRecord{
		Id:        p.opts.newID(),
		UserId:    in.UserId,
		Profile:   extract.Document{ProfileTextField: in.Profile},
		Reasoning: reasoning.Document,
		Workout:   workout.Document,
		Meal:      meal.Document,
		CreatedAt: p.opts.now(),
	}
	if err := p.store.Insert(ctx, record); err != nil {
		return fail(err)
	}

	run.Record = record
	run.State = StateDone
	span.SetAttributes(attribute.String("plan_id", record.Id.String()))

	p.opts.logger.Info("PLANNER", "Plan generation finished", map[string]interface{}{
		"user_id": in.UserId,
		"plan_id": record.Id.String(),
		"turns":   run.Session.Len(),
	})

	if err := p.opts.publisher.Publish(ctx, NewPlanGeneratedEvent(record)); err != nil {
		p.opts.logger.Warn("PLANNER", "Failed to publish plan event", map[string]interface{}{
			"plan_id": record.Id.String(),
			"error":   err.Error(),
		})
	}

	return run, nil
}

func (p *PlanPipeline) stage(ctx context.Context, run *PlanRun, pacer Pacer, req StageRequest) (StageResult, error) {
	res, session, err := p.runner.run(ctx, pacer, run.Session, req)
	if err != nil {
		return res, err
	}
	run.Session = session
	run.Stages = append(run.Stages, res)
	return res, nil
}
