package planner

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"fitai-planner-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Do(t *testing.T) {
	transient := &llm.ProviderError{Provider: "stub", Status: http.StatusServiceUnavailable}
	fatal := &llm.ProviderError{Provider: "stub", Status: http.StatusForbidden}

	tests := []struct {
		name         string
		errs         []error
		wantAttempts int
		wantOut      string
		wantErrIs    error
	}{
		{"first try", nil, 1, "ok", nil},
		{"recovers on third", []error{transient, transient}, 3, "ok", nil},
		{"budget spent", []error{transient, transient, transient, nil}, 3, "", ErrRetriesExhausted},
		{"fatal stops at once", []error{fatal}, 1, "", fatal},
		{"fatal after a transient", []error{transient, fatal}, 2, "", fatal},
		{"fatal on last attempt", []error{transient, transient, fatal}, 3, "", fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var retried []int
			policy := instantPolicy()
			policy.OnRetry = func(attempt int, err error, wait time.Duration) {
				retried = append(retried, attempt)
			}

			calls := 0
			out, attempts, err := policy.Do(context.Background(), func(ctx context.Context, attempt int) (string, error) {
				calls++
				assert.Equal(t, calls, attempt)
				if attempt <= len(tt.errs) && tt.errs[attempt-1] != nil {
					return "", tt.errs[attempt-1]
				}
				return "ok", nil
			})

			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantAttempts, calls)
			assert.Equal(t, tt.wantOut, out)
			if tt.wantErrIs == nil {
				require.NoError(t, err)
				assert.Len(t, retried, attempts-1)
				return
			}
			assert.ErrorIs(t, err, tt.wantErrIs)
			if errors.Is(tt.wantErrIs, ErrRetriesExhausted) {
				assert.ErrorIs(t, err, transient)
				assert.Equal(t, []int{1, 2}, retried)
			} else {
				assert.NotErrorIs(t, err, ErrRetriesExhausted)
			}
		})
	}
}

func TestRetryPolicy_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := instantPolicy()

	_, attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) (string, error) {
		cancel()
		return "", &llm.ProviderError{Status: http.StatusTooManyRequests}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestExponentialBackOff(t *testing.T) {
	b := ExponentialBackOff(4*time.Second, 30*time.Second)()
	b.Reset()

	var got []time.Duration
	for i := 0; i < 5; i++ {
		got = append(got, b.NextBackOff())
	}

	assert.Equal(t, []time.Duration{4 * time.Second, 8 * time.Second, 16 * time.Second, 30 * time.Second, 30 * time.Second}, got)
}

func TestInvoker_RejectsEmptyInput(t *testing.T) {
	provider := newScriptedProvider(answer("unused"))
	session := NewSession("u")

	inv, err := newTestInvoker(provider).Invoke(context.Background(), session, NewStageRequest(StageWorkout, "sys", "   "))

	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, 0, inv.Attempts)
	assert.Equal(t, 0, inv.Session.Len())
	assert.Empty(t, provider.Calls())
}

func TestSession_AppendDoesNotMutate(t *testing.T) {
	s := NewSession("u")
	next := s.Append(llm.Message{Role: llm.RoleUser, Content: "hi"})

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, next.Len())
	assert.Equal(t, s.ID, next.ID)

	msgs := next.Messages()
	msgs[0].Content = "changed"
	assert.Equal(t, "hi", next.Messages()[0].Content)
}
