package mapper

import (
	"encoding/json"
	"fmt"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/internal/model"
	"fitai-planner-be/pkg/extract"

	"gorm.io/datatypes"
)

type PlanMapper struct{}

func NewPlanMapper() *PlanMapper {
	return &PlanMapper{}
}

func (m *PlanMapper) ToModel(r *entity.PlanRecord) (*model.FitnessPlan, error) {
	if r == nil {
		return nil, nil
	}

	profile, err := m.DocumentToJSON(r.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	reasoning, err := m.DocumentToJSON(r.Reasoning)
	if err != nil {
		return nil, fmt.Errorf("marshal reasoning: %w", err)
	}
	workout, err := m.DocumentToJSON(r.Workout)
	if err != nil {
		return nil, fmt.Errorf("marshal workout plan: %w", err)
	}
	meal, err := m.DocumentToJSON(r.Meal)
	if err != nil {
		return nil, fmt.Errorf("marshal meal plan: %w", err)
	}

	return &model.FitnessPlan{
		Id:                r.Id,
		UserId:            r.UserId,
		UserProfile:       profile,
		ReasoningAnalysis: reasoning,
		WorkoutPlan:       workout,
		MealPlan:          meal,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}, nil
}

func (m *PlanMapper) ToEntity(p *model.FitnessPlan) (*entity.PlanRecord, error) {
	if p == nil {
		return nil, nil
	}

	profile, err := m.JSONToDocument(p.UserProfile)
	if err != nil {
		return nil, fmt.Errorf("unmarshal profile of plan %s: %w", p.Id, err)
	}
	reasoning, err := m.JSONToDocument(p.ReasoningAnalysis)
	if err != nil {
		return nil, fmt.Errorf("unmarshal reasoning of plan %s: %w", p.Id, err)
	}
	workout, err := m.JSONToDocument(p.WorkoutPlan)
	if err != nil {
		return nil, fmt.Errorf("unmarshal workout plan of plan %s: %w", p.Id, err)
	}
	meal, err := m.JSONToDocument(p.MealPlan)
	if err != nil {
		return nil, fmt.Errorf("unmarshal meal plan of plan %s: %w", p.Id, err)
	}

	return &entity.PlanRecord{
		Id:        p.Id,
		UserId:    p.UserId,
		Profile:   profile,
		Reasoning: reasoning,
		Workout:   workout,
		Meal:      meal,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func (m *PlanMapper) ToEntities(plans []*model.FitnessPlan) ([]*entity.PlanRecord, error) {
	out := make([]*entity.PlanRecord, 0, len(plans))
	for _, p := range plans {
		r, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DocumentToJSON returns nil for a nil document so nullable columns stay NULL.
func (m *PlanMapper) DocumentToJSON(doc extract.Document) (datatypes.JSON, error) {
	if doc == nil {
		return nil, nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// JSONToDocument accepts objects only. Legacy rows holding a JSON string are
// wrapped as {"summary": text}.
func (m *PlanMapper) JSONToDocument(raw datatypes.JSON) (extract.Document, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var doc extract.Document
	if err := json.Unmarshal(raw, &doc); err == nil {
		return doc, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, err
	}
	if parsed, ok := extract.ParseDocument(text); ok {
		return parsed, nil
	}
	return extract.Document{extract.PrimaryField: text}, nil
}
