package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPlanPageSize = 10
	MaxPlanPageSize     = 100
)

type GeneratePlanRequest struct {
	UserId  string `json:"user_id" validate:"required,max=128"`
	Profile string `json:"profile" validate:"required"`
}

type CorrectPlanRequest struct {
	UserId      string `json:"user_id" validate:"required,max=128"`
	Instruction string `json:"instruction" validate:"required"`
	PlanType    string `json:"plan_type" validate:"required,oneof=workout meal both"`
}

type ListPlansRequest struct {
	UserId string `query:"user_id" validate:"max=128"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
	Offset int    `query:"offset" validate:"min=0"`
}

type PlanResponse struct {
	Id                uuid.UUID      `json:"id"`
	UserId            string         `json:"user_id"`
	UserProfile       map[string]any `json:"user_profile"`
	ReasoningAnalysis map[string]any `json:"reasoning_analysis,omitempty"`
	WorkoutPlan       map[string]any `json:"workout_plan"`
	MealPlan          map[string]any `json:"meal_plan"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         *time.Time     `json:"updated_at,omitempty"`
}

type StageResponse struct {
	Stage      string `json:"stage"`
	Attempts   int    `json:"attempts"`
	DurationMs int64  `json:"duration_ms"`
}

type GeneratePlanResponse struct {
	PlanResponse
	SessionId string          `json:"session_id"`
	Stages    []StageResponse `json:"stages"`
}

type CorrectPlanResponse struct {
	PlanResponse
	CorrectionApplied string          `json:"correction_applied"`
	PlanType          string          `json:"plan_type"`
	Stages            []StageResponse `json:"stages"`
}

type ListPlansResponse struct {
	Items  []*PlanResponse `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
