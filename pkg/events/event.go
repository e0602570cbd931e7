package events

import "time"

// Event is a plan lifecycle notification such as PLAN_GENERATED or
// PLAN_CORRECTED. It travels over the in-process bus and is forwarded to NATS.
type Event interface {
	// EventType returns the event code, e.g. "PLAN_GENERATED".
	EventType() string

	// Payload returns the event fields; plan events always carry plan_id and user_id.
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the concrete event built by the planner and rebuilt from the
// NATS envelope on the consuming side.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// PlanId returns the plan_id field of a plan event, or "" when absent.
func PlanId(e Event) string {
	id, _ := e.Payload()["plan_id"].(string)
	return id
}
