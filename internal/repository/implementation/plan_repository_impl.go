package implementation

import (
	"context"
	"errors"
	"fmt"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/internal/mapper"
	"fitai-planner-be/internal/model"
	"fitai-planner-be/internal/repository/contract"
	"fitai-planner-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PlanMapper
}

func NewPlanRepository(db *gorm.DB) contract.PlanRepository {
	return &PlanRepositoryImpl{
		db:     db,
		mapper: mapper.NewPlanMapper(),
	}
}

func (r *PlanRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *entity.PlanRecord) error {
	m, err := r.mapper.ToModel(plan)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: plan %s", contract.ErrDuplicateKey, plan.Id)
		}
		return err
	}
	return nil
}

func (r *PlanRepositoryImpl) UpdatePartial(ctx context.Context, id uuid.UUID, update entity.PlanUpdate) error {
	fields := map[string]interface{}{
		"updated_at": update.UpdatedAt,
	}

	columns := []struct {
		name string
		doc  map[string]any
	}{
		{"reasoning_analysis", update.Reasoning},
		{"workout_plan", update.Workout},
		{"meal_plan", update.Meal},
	}
	for _, c := range columns {
		if c.doc == nil {
			continue
		}
		j, err := r.mapper.DocumentToJSON(c.doc)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", c.name, err)
		}
		fields[c.name] = j
	}

	res := r.db.WithContext(ctx).Model(&model.FitnessPlan{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: plan %s", contract.ErrNotFound, id)
	}
	return nil
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.FitnessPlan{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: plan %s", contract.ErrNotFound, id)
	}
	return nil
}

func (r *PlanRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PlanRecord, error) {
	var m model.FitnessPlan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *PlanRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PlanRecord, error) {
	var models []*model.FitnessPlan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *PlanRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.FitnessPlan{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// isDuplicateKey covers both translated gorm errors and raw pgx errors from
// connections opened without TranslateError.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
