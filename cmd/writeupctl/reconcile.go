package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/workshop-backend/internal/clock"
	"github.com/wekeepgrowing/workshop-backend/internal/domain/writeup"
	"github.com/wekeepgrowing/workshop-backend/internal/usecase"
)

var (
	reconcileJob     string
	reconcileAllOpen bool
)

var errReconcileTarget = errors.New("exactly one of --job or --all-open is required")

// reconcileCmd brings stored checklists in line with authorized VHC work
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile checklist tasks against authorized VHC work",
	Long: `Re-reads the customer requests and authorized VHC items of a job (or of
every open job) and stores the reconciled task checklist when it changed.

When redis is configured each stored checklist is published so running
services merge it into their live drafts.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileJob, "job", "", "Job number to reconcile")
	reconcileCmd.Flags().BoolVar(&reconcileAllOpen, "all-open", false, "Reconcile every job that is not closed")
}

// taskRefresher is the part of the write-up service reconcile drives
type taskRefresher interface {
	RefreshAuthorizedTasks(ctx context.Context, jobNumber string) ([]writeup.Task, error)
	RefreshOpenJobs(ctx context.Context) (int, error)
}

func checkReconcileTarget(job string, allOpen bool) error {
	if (job == "") == !allOpen {
		return errReconcileTarget
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if err := checkReconcileTarget(reconcileJob, reconcileAllOpen); err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.close()

	vatRate, err := e.cfg.Pricing.Rate()
	if err != nil {
		return err
	}
	svc := usecase.NewWriteupService(
		e.repos.WriteupRepositories(),
		e.publisher,
		nil,
		clock.Real(),
		vatRate,
		e.logger,
	)
	return reconcile(cmd.Context(), cmd.OutOrStdout(), svc, reconcileJob, reconcileAllOpen, e.logger)
}

func reconcile(ctx context.Context, out io.Writer, svc taskRefresher, job string, allOpen bool, logger *zap.Logger) error {
	if allOpen {
		done, err := svc.RefreshOpenJobs(ctx)
		if err != nil {
			return err
		}
		logger.Info("Open jobs reconciled", zap.Int("jobs", done))
		fmt.Fprintf(out, "reconciled %d open jobs\n", done)
		return nil
	}

	tasks, err := svc.RefreshAuthorizedTasks(ctx, job)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d tasks\n", job, len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(out, "  [%s] %-8s %s\n", t.Status, t.Source, t.Label)
	}
	return nil
}
