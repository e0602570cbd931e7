package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fitai-planner-be/internal/dto"
	"fitai-planner-be/internal/pkg/serverutils"
	"fitai-planner-be/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var userId, profileFile, profile string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run reasoning, workout and meal stages for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileFile != "" {
				raw, err := os.ReadFile(profileFile)
				if err != nil {
					return fmt.Errorf("reading profile: %w", err)
				}
				profile = string(raw)
			}

			req := &dto.GeneratePlanRequest{UserId: userId, Profile: strings.TrimSpace(profile)}
			if err := serverutils.ValidateRequest(req); err != nil {
				return err
			}

			return withPlanService(cmd, func(ctx context.Context, svc service.IPlanService) error {
				res, err := svc.Generate(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&userId, "user", "", "user id the plan belongs to")
	cmd.Flags().StringVar(&profileFile, "profile-file", "", "file holding the free-text profile")
	cmd.Flags().StringVar(&profile, "profile", "", "free-text profile (ignored with --profile-file)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newCorrectCmd() *cobra.Command {
	var userId, instruction, target string

	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Revise the latest plan of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &dto.CorrectPlanRequest{UserId: userId, Instruction: instruction, PlanType: strings.ToLower(target)}
			if err := serverutils.ValidateRequest(req); err != nil {
				return err
			}

			return withPlanService(cmd, func(ctx context.Context, svc service.IPlanService) error {
				res, err := svc.Correct(ctx, req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&userId, "user", "", "user whose latest plan is corrected")
	cmd.Flags().StringVar(&instruction, "instruction", "", "what to change")
	cmd.Flags().StringVar(&target, "target", "both", "workout, meal or both")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("instruction")
	return cmd
}

func newShowCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one stored plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			planId, err := uuid.Parse(id)
			if err != nil {
				return fmt.Errorf("invalid plan id %q: %w", id, err)
			}

			return withPlanService(cmd, func(ctx context.Context, svc service.IPlanService) error {
				res, err := svc.Show(ctx, planId)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "plan id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newListCmd() *cobra.Command {
	req := &dto.ListPlansRequest{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serverutils.ValidateRequest(req); err != nil {
				return err
			}

			return withPlanService(cmd, func(ctx context.Context, svc service.IPlanService) error {
				res, err := svc.List(ctx, req)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				for _, p := range res.Items {
					fmt.Fprintf(w, "%s  %-20s  %s\n", p.Id, p.UserId, p.CreatedAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Fprintf(w, "%d plan(s)\n", len(res.Items))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.UserId, "user", "", "only plans of this user")
	cmd.Flags().IntVar(&req.Limit, "limit", dto.DefaultPlanPageSize, "page size")
	cmd.Flags().IntVar(&req.Offset, "offset", 0, "records to skip")
	return cmd
}
