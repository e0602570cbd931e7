// Package cli defines the cobra commands of planctl.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fitai-planner-be/internal/bootstrap"
	"fitai-planner-be/internal/config"
	"fitai-planner-be/internal/service"
	"fitai-planner-be/pkg/database"

	"github.com/spf13/cobra"
)

// newPlanService is replaced in tests.
var newPlanService = func(cfg *config.Config) (service.IPlanService, func(), error) {
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	container, err := bootstrap.NewContainer(db, cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := container.ConsumerService.Consume(ctx); err != nil {
		cancel()
		container.Close()
		return nil, nil, err
	}

	return container.PlanService, func() {
		cancel()
		container.Close()
	}, nil
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planctl",
		Short: "Generate and correct fitness plans from the command line",
		Long: `planctl drives the same plan pipelines as the REST service.
It reads configuration from the environment (and .env) and talks to the
configured database, LLM provider and NATS server directly.`,
		Version:       bootstrap.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCorrectCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newEventsCmd())
	return root
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withPlanService loads config, builds the service and releases it after fn.
func withPlanService(cmd *cobra.Command, fn func(ctx context.Context, svc service.IPlanService) error) error {
	svc, release, err := newPlanService(config.Load())
	if err != nil {
		return err
	}
	defer release()

	return fn(cmd.Context(), svc)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
