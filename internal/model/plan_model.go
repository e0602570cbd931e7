package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FitnessPlan is one generated plan. Ids are assigned by the pipeline, never
// by the database.
type FitnessPlan struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId            string         `gorm:"type:varchar(128);not null;index:idx_fitness_plans_user_created,priority:1"`
	UserProfile       datatypes.JSON `gorm:"type:jsonb;not null"`
	ReasoningAnalysis datatypes.JSON `gorm:"type:jsonb"`
	WorkoutPlan       datatypes.JSON `gorm:"type:jsonb;not null"`
	MealPlan          datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt         time.Time      `gorm:"not null;index:idx_fitness_plans_user_created,priority:2,sort:desc"`
	UpdatedAt         *time.Time     `gorm:"autoUpdateTime:false"`
}

func (FitnessPlan) TableName() string {
	return "fitness_plans"
}
