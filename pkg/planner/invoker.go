package planner

import (
	"context"
	"strings"
	"time"

	"fitai-planner-be/internal/pkg/logger"
	"fitai-planner-be/pkg/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fitai-planner-be/pkg/planner"

// Invoker sends one stage to the LLM under a retry policy.
type Invoker struct {
	provider llm.LLMProvider
	policy   RetryPolicy
	logger   logger.ILogger
	tracer   trace.Tracer
}

// Invocation is the raw answer of a stage plus the session extended with
// the request and reply turns.
type Invocation struct {
	Raw      string
	Attempts int
	Session  Session
}

func NewInvoker(provider llm.LLMProvider, policy RetryPolicy, log logger.ILogger) *Invoker {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, wait time.Duration) {
			log.Warn("INVOKER", "Transient LLM failure, retrying", map[string]interface{}{
				"attempt": attempt,
				"wait":    wait.String(),
				"error":   err.Error(),
			})
		}
	}
	return &Invoker{
		provider: provider,
		policy:   policy,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}
}

func (i *Invoker) Invoke(ctx context.Context, session Session, req StageRequest) (Invocation, error) {
	if strings.TrimSpace(req.Input()) == "" {
		return Invocation{Session: session}, ErrEmptyInput
	}

	ctx, span := i.tracer.Start(ctx, "planner.invoke", trace.WithAttributes(
		attribute.String("stage", string(req.Role())),
		attribute.String("session_id", session.ID),
	))
	defer span.End()

	turn := llm.Message{Role: llm.RoleUser, Content: req.Input()}
	history := llm.WithSystem(req.SystemInstructions(), []llm.Message{turn})

	raw, attempts, err := i.policy.Do(ctx, func(ctx context.Context, attempt int) (string, error) {
		i.logger.Debug("INVOKER", "Calling LLM", map[string]interface{}{
			"stage":   string(req.Role()),
			"attempt": attempt,
			"session": session.ID,
		})
		return i.provider.Chat(ctx, history)
	})
	span.SetAttributes(attribute.Int("attempts", attempts))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.logger.Error("INVOKER", "LLM call failed", map[string]interface{}{
			"stage":    string(req.Role()),
			"attempts": attempts,
			"error":    err.Error(),
		})
		return Invocation{Attempts: attempts, Session: session}, err
	}

	return Invocation{
		Raw:      raw,
		Attempts: attempts,
		Session:  session.Append(turn, llm.Message{Role: llm.RoleAssistant, Content: raw}),
	}, nil
}
