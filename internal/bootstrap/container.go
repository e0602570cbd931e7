package bootstrap

import (
	"context"
	"fmt"
	"log"

	"fitai-planner-be/internal/config"
	"fitai-planner-be/internal/controller"
	"fitai-planner-be/internal/events"
	"fitai-planner-be/internal/pkg/logger"
	"fitai-planner-be/internal/repository/lock"
	"fitai-planner-be/internal/repository/store"
	"fitai-planner-be/internal/repository/unitofwork"
	"fitai-planner-be/internal/service"
	"fitai-planner-be/pkg/extract"
	"fitai-planner-be/pkg/llm"
	"fitai-planner-be/pkg/llm/factory"
	pktNats "fitai-planner-be/pkg/nats"
	"fitai-planner-be/pkg/planner"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Version is reported by the health endpoint and the tracer resource.
const Version = "1.0.0"

type Container struct {
	// Controllers
	HealthController controller.IHealthController
	PlanController   controller.IPlanController

	// Services
	PlanService     service.IPlanService
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	planStore := store.NewPlanStore(uowFactory)

	c := &Container{Logger: sysLogger}

	// 2. LLM Provider
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.Model, factory.Keys{
		GoogleAPIKey:  cfg.Keys.GoogleAPIKey,
		OpenAIAPIKey:  cfg.Keys.OpenAIAPIKey,
		OpenAIBaseURL: cfg.Keys.OpenAIBaseURL,
		OllamaBaseURL: cfg.Keys.OllamaBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM model: %s", cfg.Ai.Model)

	prompts, err := planner.LoadPrompts(cfg.Ai.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	// 3. Infrastructure
	// Event bus; NATS is optional and only receives forwarded events
	bus := events.NewBus(sysLogger)
	c.closers = append(c.closers, func() { _ = bus.Close() })

	var forwarder service.EventForwarder
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		forwarder = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	locker := newLocker(cfg, sysLogger, c)

	// 4. Planner
	policy := planner.RetryPolicy{
		MaxAttempts: cfg.Ai.MaxAttempts,
		NewBackOff:  planner.ExponentialBackOff(cfg.Ai.BackOffMin, cfg.Ai.BackOffMax),
		Retryable:   llm.IsTransient,
	}
	invoker := planner.NewInvoker(llmProvider, policy, sysLogger)
	extractor := extract.NewExtractor(sysLogger)

	opts := []planner.Option{
		planner.WithPacer(planner.RatePacerFactory(cfg.Ai.StagePacing)),
		planner.WithPublisher(bus),
		planner.WithLocker(locker, cfg.Ai.CorrectionTTL),
		planner.WithLogger(sysLogger),
	}
	generator := planner.NewPlanPipeline(invoker, extractor, planStore, prompts, opts...)
	corrector := planner.NewCorrectionPipeline(invoker, extractor, planStore, prompts, opts...)

	// 5. Services
	c.PlanService = service.NewPlanService(generator, corrector, planStore, sysLogger)
	c.ConsumerService = service.NewConsumerService(
		bus.PubSub(),
		events.PlanTopic,
		forwarder,
		logger.NewIsolatedLogger("logs/events.log"),
	)

	// 6. Controllers
	c.HealthController = controller.NewHealthController(Version)
	c.PlanController = controller.NewPlanController(c.PlanService)

	return c, nil
}

// newLocker prefers Redis so corrections are serialized across replicas and
// falls back to an in-process lock when Redis is unreachable.
func newLocker(cfg *config.Config, sysLogger logger.ILogger, c *Container) planner.SubjectLocker {
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}

	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Correction locks are process-local", err)
		_ = rdb.Close()
		return lock.NewMemoryLocker()
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return lock.NewRedisLocker(rdb, sysLogger)
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
