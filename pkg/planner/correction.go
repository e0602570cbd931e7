package planner

import (
	"context"
	"fmt"
	"strings"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/pkg/extract"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Target selects which artifacts a correction rewrites.
type Target string

const (
	TargetWorkout Target = "workout"
	TargetMeal    Target = "meal"
	TargetBoth    Target = "both"
)

func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetWorkout, TargetMeal, TargetBoth:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTarget, s)
}

// Roles lists the stages to run, workout always before meal.
func (t Target) Roles() []StageRole {
	switch t {
	case TargetWorkout:
		return []StageRole{StageWorkout}
	case TargetMeal:
		return []StageRole{StageMeal}
	case TargetBoth:
		return []StageRole{StageWorkout, StageMeal}
	}
	return nil
}

type CorrectionRequest struct {
	UserId      string
	Instruction string
	Target      Target
}

// CorrectionRun holds the merged record after all targeted artifacts were rewritten.
type CorrectionRun struct {
	Record  *entity.PlanRecord
	Stages  []StageResult
	Session Session
}

// CorrectionPipeline rewrites artifacts of a user's latest plan from a free
// text instruction. The reasoning stage is never run and untargeted
// artifacts are left as stored.
type CorrectionPipeline struct {
	runner  stageRunner
	store   PlanStore
	prompts Prompts
	opts    options
	tracer  trace.Tracer
}

func NewCorrectionPipeline(invoker *Invoker, extractor *extract.Extractor, store PlanStore, prompts Prompts, opts ...Option) *CorrectionPipeline {
	o := buildOptions(opts)
	return &CorrectionPipeline{
		runner:  stageRunner{invoker: invoker, extractor: extractor, opts: o},
		store:   store,
		prompts: prompts,
		opts:    o,
		tracer:  otel.Tracer(tracerName),
	}
}

func (c *CorrectionPipeline) Correct(ctx context.Context, req CorrectionRequest) (*CorrectionRun, error) {
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, ErrEmptyInstruction
	}
	roles := req.Target.Roles()
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, req.Target)
	}

	ctx, span := c.tracer.Start(ctx, "planner.correct", trace.WithAttributes(
		attribute.String("user_id", req.UserId),
		attribute.String("target", string(req.Target)),
	))
	defer span.End()

	fail := func(state RunState, err error) (*CorrectionRun, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.opts.logger.Error("PLANNER", "Plan correction failed", map[string]interface{}{
			"user_id": req.UserId,
			"state":   string(state),
			"error":   err.Error(),
		})
		return nil, &PipelineError{State: state, Err: err}
	}

	release, err := c.opts.locker.TryLock(ctx, correctionLockKey(req.UserId), c.opts.lockTTL)
	if err != nil {
		return fail(StateStart, err)
	}
	defer release()

	current, err := c.store.LatestByUser(ctx, req.UserId)
	if err != nil {
		return fail(StateStart, err)
	}

	working := current.Clone()
	run := &CorrectionRun{Session: NewSession(req.UserId)}
	profile := working.Profile.String()
	pacer := c.opts.pacers()

	c.opts.logger.Info("PLANNER", "Plan correction started", map[string]interface{}{
		"user_id": req.UserId,
		"plan_id": working.Id.String(),
		"target":  string(req.Target),
	})

	for _, role := range roles {
		input := correctionInput(role, req.UserId, profile, artifactOf(working, role).String(), req.Instruction)
		res, session, err := c.runner.run(ctx, pacer, run.Session, NewStageRequest(role, c.prompts.System(role), input))
		if err != nil {
			return fail(RunState(role), err)
		}
		run.Session = session
		run.Stages = append(run.Stages, res)

		update := entity.PlanUpdate{UpdatedAt: c.opts.now()}
		setArtifact(&update, role, res.Document)
		if err := c.store.Update(ctx, working.Id, update); err != nil {
			return fail(StatePersist, err)
		}
		update.Apply(working)
	}

	run.Record = working
	c.opts.logger.Info("PLANNER", "Plan correction finished", map[string]interface{}{
		"user_id": req.UserId,
		"plan_id": working.Id.String(),
		"stages":  len(run.Stages),
	})

	if err := c.opts.publisher.Publish(ctx, NewPlanCorrectedEvent(working, req.Target, req.Instruction)); err != nil {
		c.opts.logger.Warn("PLANNER", "Failed to publish plan event", map[string]interface{}{
			"plan_id": working.Id.String(),
			"error":   err.Error(),
		})
	}

	return run, nil
}

func correctionLockKey(userId string) string {
	return "plan-correction:" + userId
}

func artifactOf(r *entity.PlanRecord, role StageRole) extract.Document {
	if role == StageMeal {
		return r.Meal
	}
	return r.Workout
}

func setArtifact(u *entity.PlanUpdate, role StageRole, doc extract.Document) {
	if role == StageMeal {
		u.Meal = doc
		return
	}
	u.Workout = doc
}
