package planner

import (
	"context"
	"time"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/pkg/events"
)

const (
	EventPlanGenerated = "PLAN_GENERATED"
	EventPlanCorrected = "PLAN_CORRECTED"
)

// EventPublisher receives plan lifecycle events. Publishing is best effort:
// pipelines log a failed publish and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) error { return nil }

func NewPlanGeneratedEvent(record *entity.PlanRecord) events.Event {
	return events.BaseEvent{
		Type: EventPlanGenerated,
		Data: map[string]interface{}{
			"plan_id": record.Id.String(),
			"user_id": record.UserId,
		},
		OccurredAt: record.CreatedAt,
	}
}

func NewPlanCorrectedEvent(record *entity.PlanRecord, target Target, instruction string) events.Event {
	occurred := time.Now()
	if record.UpdatedAt != nil {
		occurred = *record.UpdatedAt
	}
	return events.BaseEvent{
		Type: EventPlanCorrected,
		Data: map[string]interface{}{
			"plan_id":     record.Id.String(),
			"user_id":     record.UserId,
			"target":      string(target),
			"instruction": instruction,
		},
		OccurredAt: occurred,
	}
}
