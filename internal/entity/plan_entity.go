package entity

import (
	"time"

	"fitai-planner-be/pkg/extract"

	"github.com/google/uuid"
)

// PlanRecord is one generated plan for a user: the profile it was built from,
// the reasoning analysis and the two artifacts.
type PlanRecord struct {
	Id        uuid.UUID
	UserId    string
	Profile   extract.Document
	Reasoning extract.Document // nil when the reasoning stage was skipped
	Workout   extract.Document
	Meal      extract.Document
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Clone deep-copies the record so a working copy never aliases stored state.
func (r *PlanRecord) Clone() *PlanRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Profile = r.Profile.Clone()
	out.Reasoning = r.Reasoning.Clone()
	out.Workout = r.Workout.Clone()
	out.Meal = r.Meal.Clone()
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return &out
}

// PlanUpdate carries the fields of a partial update. Nil documents are left untouched.
type PlanUpdate struct {
	Reasoning extract.Document
	Workout   extract.Document
	Meal      extract.Document
	UpdatedAt time.Time
}

// Apply merges the supplied fields into r.
func (u PlanUpdate) Apply(r *PlanRecord) {
	if u.Reasoning != nil {
		r.Reasoning = u.Reasoning.Clone()
	}
	if u.Workout != nil {
		r.Workout = u.Workout.Clone()
	}
	if u.Meal != nil {
		r.Meal = u.Meal.Clone()
	}
	updatedAt := u.UpdatedAt
	r.UpdatedAt = &updatedAt
}
