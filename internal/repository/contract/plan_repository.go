package contract

import (
	"context"
	"errors"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/internal/repository/specification"

	"github.com/google/uuid"
)

var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrNotFound     = errors.New("record not found")
)

type PlanRepository interface {
	// Create fails with ErrDuplicateKey when the id is taken.
	Create(ctx context.Context, plan *entity.PlanRecord) error
	// UpdatePartial writes only the non-nil documents of update plus updated_at.
	UpdatePartial(ctx context.Context, id uuid.UUID, update entity.PlanUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlanRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlanRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
