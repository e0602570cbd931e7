package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"fitai-planner-be/internal/config"
	"fitai-planner-be/pkg/events"
	pktNats "fitai-planner-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var eventType, durable string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail plan events from NATS JetStream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			subject := pktNats.SubjectPrefix + ".>"
			if eventType != "" {
				subject = pktNats.Subject(eventType)
			}

			w := cmd.OutOrStdout()
			label := color.New(color.FgCyan, color.Bold).SprintFunc()
			fmt.Fprintf(w, "Listening on %s (Ctrl+C to stop)\n", subject)

			return sub.Subscribe(ctx, subject, durable, func(ctx context.Context, event events.Event) error {
				fmt.Fprintf(w, "%s %s plan=%s %v\n",
					event.Timestamp().Format("15:04:05"),
					label(event.EventType()),
					events.PlanId(event),
					event.Payload(),
				)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&eventType, "type", "", "only this event type, e.g. PLAN_CORRECTED")
	cmd.Flags().StringVar(&durable, "durable", "", "durable consumer name; empty tails new events only")
	return cmd
}
