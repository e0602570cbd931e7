package service

import (
	"context"
	"fmt"

	"fitai-planner-be/internal/dto"
	"fitai-planner-be/internal/entity"
	"fitai-planner-be/internal/pkg/logger"
	"fitai-planner-be/pkg/planner"

	"github.com/google/uuid"
)

type IPlanService interface {
	Generate(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error)
	Correct(ctx context.Context, req *dto.CorrectPlanRequest) (*dto.CorrectPlanResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error)
	List(ctx context.Context, req *dto.ListPlansRequest) (*dto.ListPlansResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanCatalog is the store as seen by the service: the pipeline store plus
// the counting the listing endpoint needs.
type PlanCatalog interface {
	planner.PlanStore
	CountByUser(ctx context.Context, userId string) (int64, error)
}

type planService struct {
	generator *planner.PlanPipeline
	corrector *planner.CorrectionPipeline
	store     PlanCatalog
	logger    logger.ILogger
}

func NewPlanService(
	generator *planner.PlanPipeline,
	corrector *planner.CorrectionPipeline,
	store PlanCatalog,
	log logger.ILogger,
) IPlanService {
	return &planService{
		generator: generator,
		corrector: corrector,
		store:     store,
		logger:    log,
	}
}

func (s *planService) Generate(ctx context.Context, req *dto.GeneratePlanRequest) (*dto.GeneratePlanResponse, error) {
	run, err := s.generator.Run(ctx, planner.PlanInput{UserId: req.UserId, Profile: req.Profile})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PLAN_SERVICE", "Plan generated", map[string]interface{}{
		"plan_id": run.Record.Id.String(),
		"user_id": req.UserId,
	})

	return &dto.GeneratePlanResponse{
		PlanResponse: *toPlanResponse(run.Record),
		SessionId:    run.Session.ID,
		Stages:       toStageResponses(run.Stages),
	}, nil
}

func (s *planService) Correct(ctx context.Context, req *dto.CorrectPlanRequest) (*dto.CorrectPlanResponse, error) {
	target, err := planner.ParseTarget(req.PlanType)
	if err != nil {
		return nil, err
	}

	run, err := s.corrector.Correct(ctx, planner.CorrectionRequest{
		UserId:      req.UserId,
		Instruction: req.Instruction,
		Target:      target,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("PLAN_SERVICE", "Plan corrected", map[string]interface{}{
		"plan_id": run.Record.Id.String(),
		"user_id": req.UserId,
		"target":  string(target),
	})

	return &dto.CorrectPlanResponse{
		PlanResponse:      *toPlanResponse(run.Record),
		CorrectionApplied: req.Instruction,
		PlanType:          string(target),
		Stages:            toStageResponses(run.Stages),
	}, nil
}

func (s *planService) Show(ctx context.Context, id uuid.UUID) (*dto.PlanResponse, error) {
	record, err := s.store.ById(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPlanResponse(record), nil
}

func (s *planService) List(ctx context.Context, req *dto.ListPlansRequest) (*dto.ListPlansResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = dto.DefaultPlanPageSize
	}
	if limit > dto.MaxPlanPageSize {
		limit = dto.MaxPlanPageSize
	}

	records, err := s.store.ListByUser(ctx, req.UserId, limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}

	total, err := s.store.CountByUser(ctx, req.UserId)
	if err != nil {
		return nil, fmt.Errorf("count plans: %w", err)
	}

	items := make([]*dto.PlanResponse, 0, len(records))
	for _, r := range records {
		items = append(items, toPlanResponse(r))
	}

	return &dto.ListPlansResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: req.Offset,
	}, nil
}

func (s *planService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("PLAN_SERVICE", "Plan deleted", map[string]interface{}{
		"plan_id": id.String(),
	})
	return nil
}

func toPlanResponse(r *entity.PlanRecord) *dto.PlanResponse {
	return &dto.PlanResponse{
		Id:                r.Id,
		UserId:            r.UserId,
		UserProfile:       r.Profile,
		ReasoningAnalysis: r.Reasoning,
		WorkoutPlan:       r.Workout,
		MealPlan:          r.Meal,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toStageResponses(stages []planner.StageResult) []dto.StageResponse {
	out := make([]dto.StageResponse, 0, len(stages))
	for _, st := range stages {
		out = append(out, dto.StageResponse{
			Stage:      string(st.Role),
			Attempts:   st.Attempts,
			DurationMs: st.FinishedAt.Sub(st.StartedAt).Milliseconds(),
		})
	}
	return out
}
