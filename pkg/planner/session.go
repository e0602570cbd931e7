package planner

import (
	"time"

	"fitai-planner-be/pkg/llm"

	"github.com/google/uuid"
)

// Session scopes one pipeline run. It is a value: Append returns a new
// Session and never mutates the receiver, so each stage's view of the
// conversation is explicit in its signature.
type Session struct {
	ID        string
	UserId    string
	CreatedAt time.Time
	messages  []llm.Message
}

func NewSession(userId string) Session {
	return Session{
		ID:        uuid.NewString(),
		UserId:    userId,
		CreatedAt: time.Now(),
	}
}

// Append returns a copy of the session with msgs added to the log.
func (s Session) Append(msgs ...llm.Message) Session {
	next := make([]llm.Message, 0, len(s.messages)+len(msgs))
	next = append(next, s.messages...)
	next = append(next, msgs...)
	s.messages = next
	return s
}

// Messages returns a copy of the ordered log.
func (s Session) Messages() []llm.Message {
	out := make([]llm.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s Session) Len() int {
	return len(s.messages)
}
