package planner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fitai-planner-be/internal/entity"
	"fitai-planner-be/pkg/events"
	"fitai-planner-be/pkg/extract"
	"fitai-planner-be/pkg/llm"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

type reply struct {
	text string
	err  error
}

func answer(text string) reply {
	return reply{text: text}
}

func fails(status int) reply {
	return reply{err: &llm.ProviderError{Provider: "stub", Status: status}}
}

func failsWith(err error) reply {
	return reply{err: err}
}

// scriptedProvider answers Chat calls from a fixed queue of replies.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []reply
	calls   [][]llm.Message
}

func newScriptedProvider(replies ...reply) *scriptedProvider {
	return &scriptedProvider{replies: replies}
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, history)
	if len(p.replies) == 0 {
		return "", errors.New("unexpected provider call")
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	return r.text, r.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func (p *scriptedProvider) Calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]llm.Message(nil), p.calls...)
}

type memStore struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*entity.PlanRecord
	updates   []entity.PlanUpdate
	insertErr error
}

func newMemStore(records ...*entity.PlanRecord) *memStore {
	s := &memStore{records: map[uuid.UUID]*entity.PlanRecord{}}
	for _, r := range records {
		s.records[r.Id] = r.Clone()
	}
	return s
}

func (s *memStore) Insert(ctx context.Context, record *entity.PlanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, exists := s.records[record.Id]; exists {
		return ErrDuplicatePlan
	}
	s.records[record.Id] = record.Clone()
	return nil
}

func (s *memStore) Update(ctx context.Context, id uuid.UUID, update entity.PlanUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.records[id]
	if !exists {
		return ErrPlanNotFound
	}
	update.Apply(r)
	s.updates = append(s.updates, update)
	return nil
}

func (s *memStore) LatestByUser(ctx context.Context, userId string) (*entity.PlanRecord, error) {
	list, _ := s.ListByUser(ctx, userId, 1, 0)
	if len(list) == 0 {
		return nil, ErrPlanNotFound
	}
	return list[0], nil
}

func (s *memStore) ById(ctx context.Context, id uuid.UUID) (*entity.PlanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, exists := s.records[id]
	if !exists {
		return nil, ErrPlanNotFound
	}
	return r.Clone(), nil
}

func (s *memStore) ListByUser(ctx context.Context, userId string, limit, offset int) ([]*entity.PlanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.PlanRecord
	for _, r := range s.records {
		if r.UserId == userId {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; !exists {
		return ErrPlanNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *memStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type countingPacer struct {
	waits int
	dones int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func (p *countingPacer) Done() {
	p.dones++
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (func(), error) {
	return nil, ErrCorrectionInProgress
}

// tickingClock advances one second on every call.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func instantPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		NewBackOff:  func() backoff.BackOff { return &backoff.ZeroBackOff{} },
		Retryable:   llm.IsTransient,
	}
}

func testPrompts() Prompts {
	return Prompts{
		Reasoning:      "SYSTEM reasoning",
		Workout:        "SYSTEM workout",
		Meal:           "SYSTEM meal",
		ResponseFormat: "FORMAT sections",
	}
}

func newTestInvoker(provider llm.LLMProvider) *Invoker {
	return NewInvoker(provider, instantPolicy(), nil)
}

func seededRecord(userId string, createdAt time.Time) *entity.PlanRecord {
	return &entity.PlanRecord{
		Id:        uuid.New(),
		UserId:    userId,
		Profile:   extract.Document{ProfileTextField: "30 y/o, beginner"},
		Reasoning: extract.Document{"summary": "analysis"},
		Workout:   extract.Document{"summary": "old workout", "sessions": []any{map[string]any{"day": float64(1)}}},
		Meal:      extract.Document{"summary": "old meal", "meals": []any{"oats", "rice"}},
		CreatedAt: createdAt,
	}
}
