package planner

import (
	"context"

	"fitai-planner-be/internal/entity"

	"github.com/google/uuid"
)

// PlanStore persists plan records. Implementations must be safe for
// concurrent use. Insert fails with ErrDuplicatePlan on an existing id and
// lookups of missing ids fail with ErrPlanNotFound.
type PlanStore interface {
	Insert(ctx context.Context, record *entity.PlanRecord) error
	Update(ctx context.Context, id uuid.UUID, update entity.PlanUpdate) error
	LatestByUser(ctx context.Context, userId string) (*entity.PlanRecord, error)
	ById(ctx context.Context, id uuid.UUID) (*entity.PlanRecord, error)
	ListByUser(ctx context.Context, userId string, limit, offset int) ([]*entity.PlanRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
