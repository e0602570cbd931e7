package planner

import (
	"time"

	"fitai-planner-be/pkg/extract"
)

type StageRole string

const (
	StageReasoning StageRole = "reasoning"
	StageWorkout   StageRole = "workout"
	StageMeal      StageRole = "meal"
)

// StageRequest is immutable once built; use NewStageRequest.
type StageRequest struct {
	role   StageRole
	system string
	input  string
}

func NewStageRequest(role StageRole, system, input string) StageRequest {
	return StageRequest{role: role, system: system, input: input}
}

func (r StageRequest) Role() StageRole {
	return r.role
}

func (r StageRequest) SystemInstructions() string {
	return r.system
}

func (r StageRequest) Input() string {
	return r.input
}

// StageResult is the outcome of one stage. Document is never nil.
type StageResult struct {
	Role       StageRole
	Raw        string
	Document   extract.Document
	Attempts   int
	StartedAt  time.Time
	FinishedAt time.Time
}
