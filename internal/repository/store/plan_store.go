package store

import (
	"context"
	"errors"
	"fmt"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/internal/repository/contract"
	"fitai-planner-be/internal/repository/specification"
	"fitai-planner-be/internal/repository/unitofwork"
	"fitai-planner-be/pkg/planner"

	"github.com/google/uuid"
)

// PlanStore adapts the GORM plan repository to planner.PlanStore and maps
// repository errors onto the planner's sentinels.
type PlanStore struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ planner.PlanStore = (*PlanStore)(nil)

func NewPlanStore(uowFactory unitofwork.RepositoryFactory) *PlanStore {
	return &PlanStore{uowFactory: uowFactory}
}

func (s *PlanStore) repo(ctx context.Context) contract.PlanRepository {
	return s.uowFactory.NewUnitOfWork(ctx).PlanRepository()
}

func (s *PlanStore) Insert(ctx context.Context, record *entity.PlanRecord) error {
	if err := s.repo(ctx).Create(ctx, record); err != nil {
		return translate(err)
	}
	return nil
}

func (s *PlanStore) Update(ctx context.Context, id uuid.UUID, update entity.PlanUpdate) error {
	if err := s.repo(ctx).UpdatePartial(ctx, id, update); err != nil {
		return translate(err)
	}
	return nil
}

func (s *PlanStore) LatestByUser(ctx context.Context, userId string) (*entity.PlanRecord, error) {
	record, err := s.repo(ctx).FindOne(ctx,
		specification.ByUserID{UserID: userId},
		specification.NewestFirst{},
	)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no plan for user %s", planner.ErrPlanNotFound, userId)
	}
	return record, nil
}

func (s *PlanStore) ById(ctx context.Context, id uuid.UUID) (*entity.PlanRecord, error) {
	record, err := s.repo(ctx).FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", planner.ErrPlanNotFound, id)
	}
	return record, nil
}

// ListByUser returns plans newest first. An empty userId lists every user.
func (s *PlanStore) ListByUser(ctx context.Context, userId string, limit, offset int) ([]*entity.PlanRecord, error) {
	specs := []specification.Specification{specification.NewestFirst{}}
	if userId != "" {
		specs = append(specs, specification.ByUserID{UserID: userId})
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit, Offset: offset})
	}
	return s.repo(ctx).FindAll(ctx, specs...)
}

// CountByUser counts stored plans. An empty userId counts every user.
func (s *PlanStore) CountByUser(ctx context.Context, userId string) (int64, error) {
	var specs []specification.Specification
	if userId != "" {
		specs = append(specs, specification.ByUserID{UserID: userId})
	}
	return s.repo(ctx).Count(ctx, specs...)
}

func (s *PlanStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo(ctx).Delete(ctx, id); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, contract.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", planner.ErrDuplicatePlan, err)
	case errors.Is(err, contract.ErrNotFound):
		return fmt.Errorf("%w: %w", planner.ErrPlanNotFound, err)
	}
	return err
}
