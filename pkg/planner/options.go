package planner

import (
	"time"

	"fitai-planner-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type options struct {
	pacers    PacerFactory
	publisher EventPublisher
	locker    SubjectLocker
	lockTTL   time.Duration
	logger    logger.ILogger
	now       func() time.Time
	newID     func() uuid.UUID
}

// Option configures a PlanPipeline or CorrectionPipeline.
type Option func(*options)

func defaultOptions() options {
	return options{
		pacers:    RatePacerFactory(DefaultStagePacing),
		publisher: noopPublisher{},
		locker:    noopLocker{},
		lockTTL:   DefaultLockTTL,
		logger:    logger.NewNopLogger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithPacer(factory PacerFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.pacers = factory
		}
	}
}

func WithPublisher(publisher EventPublisher) Option {
	return func(o *options) {
		if publisher != nil {
			o.publisher = publisher
		}
	}
}

// WithLocker serializes corrections per user. Ignored by PlanPipeline.
func WithLocker(locker SubjectLocker, ttl time.Duration) Option {
	return func(o *options) {
		if locker != nil {
			o.locker = locker
		}
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}

func WithLogger(log logger.ILogger) Option {
	return func(o *options) {
		if log != nil {
			o.logger = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(o *options) {
		if newID != nil {
			o.newID = newID
		}
	}
}
