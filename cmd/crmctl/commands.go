package main

import (
	"fmt"
	"strings"

	"propertycrm/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var autoAssignCmd = &cobra.Command{
	Use:   "auto-assign",
	Short: "Assign every unassigned new or contacted lead to the best available agent",
	Args:  cobra.NoArgs,
	RunE:  runAutoAssign,
}

func runAutoAssign(cmd *cobra.Command, args []string) error {
	ctx, cancel := jobContext(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Assignment.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("auto-assign: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "considered=%d assigned=%d unassigned=%d skipped=%d failed=%d duration=%s\n",
		res.Considered, res.Assigned, res.Unassigned, res.Skipped, res.Failed, res.Duration)
	return nil
}

var rescoreStatuses []string

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute the score of every lead, optionally limited to some statuses",
	Args:  cobra.NoArgs,
	RunE:  runRescore,
}

func init() {
	rescoreCmd.Flags().StringSliceVar(&rescoreStatuses, "status", nil, "Only rescore leads in these statuses (repeatable or comma separated)")
}

func parseStatuses(raw []string) ([]domain.LeadStatus, error) {
	var out []domain.LeadStatus
	for _, r := range raw {
		s := domain.LeadStatus(strings.ToLower(strings.TrimSpace(r)))
		if s == "" {
			continue
		}
		if !s.Valid() {
			return nil, fmt.Errorf("unknown lead status %q", r)
		}
		out = append(out, s)
	}
	return out, nil
}

func runRescore(cmd *cobra.Command, args []string) error {
	statuses, err := parseStatuses(rescoreStatuses)
	if err != nil {
		return err
	}

	ctx, cancel := jobContext(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, cfg.AutoMigrate)
	if err != nil {
		return err
	}
	defer a.Close()

	updated, failed, err := a.Leads.RescoreAll(ctx, statuses)
	if err != nil {
		return fmt.Errorf("rescore: %w", err)
	}
	log.Info("rescore finished", zap.Int("updated", updated), zap.Int("failed", failed))
	fmt.Fprintf(cmd.OutOrStdout(), "updated=%d failed=%d\n", updated, failed)
	if failed > 0 {
		return fmt.Errorf("%d leads could not be rescored", failed)
	}
	return nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := jobContext(cmd.Context())
		defer cancel()

		a, err := openApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}
