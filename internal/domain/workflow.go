package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/necromindcom/r36s-duplicate-cleaner/internal/adapter"
	"github.com/necromindcom/r36s-duplicate-cleaner/internal/controller"
	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
	"github.com/necromindcom/r36s-duplicate-cleaner/pkg"
)

// ScanArgs contains the arguments for a dry-run duplicate scan.
type ScanArgs struct {
	Root     m.Path
	Workers  int
	MinSize  int64
	SkipDirs []string
	Verify   bool
	LogFile  m.Path
	PlanFile m.Path
}

// CleanArgs contains the arguments for a scan followed by plan execution.
type CleanArgs struct {
	ScanArgs
	AssumeYes bool
	Permanent bool
	TrashDir  string
}

// Workflow drives the scan and clean use cases end to end.
type Workflow interface {
	Scan(ctx context.Context, args ScanArgs) error
	Clean(ctx context.Context, args CleanArgs) error
}

type workflow struct {
	funnel  Funnel
	ui      controller.UI
	reports adapter.ReportWriter
}

// NewWorkflow creates a Workflow with the provided collaborators.
func NewWorkflow(funnel Funnel, ui controller.UI, reports adapter.ReportWriter) Workflow {
	return &workflow{funnel: funnel, ui: ui, reports: reports}
}

// Scan finds duplicates under args.Root, presents the statistics and
// writes the configured report artifacts. Nothing is deleted.
func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	if err := w.ui.Start(ctx, controller.WithScanMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	_, err := w.scan(ctx, args)

	return err
}

// Clean runs the scan flow and then executes the deletion plan, moving
// duplicates to a trash directory unless permanent removal was asked
// for. The user confirms first unless AssumeYes is set.
func (w *workflow) Clean(ctx context.Context, args CleanArgs) error {
	if err := w.ui.Start(ctx, controller.WithCleanMode()); err != nil {
		return err
	}
	defer w.ui.Close(ctx)

	report, err := w.scan(ctx, args.ScanArgs)
	if err != nil {
		return err
	}

	total := len(report.Plan.Entries)
	if total == 0 {
		return nil
	}

	remover := removerFor(args)

	if !args.AssumeYes {
		if !w.ui.Confirm(ctx, cleanPrompt(report.Stats, remover)) {
			w.ui.Notice(ctx, "Operation cancelled, nothing was deleted.")
			slog.Info("Clean cancelled by user", "root", args.Root)

			return nil
		}
	}

	result := adapter.ExecutePlan(report.Plan, remover, func(done, failed int) {
		w.ui.CleanProgress(done, failed, total)
	})

	slog.Info("Clean completed", "root", args.Root,
		"deleted", result.Deleted, "failed", result.Failed, "freed_bytes", result.FreedBytes)
	w.ui.CleanSummary(ctx, result, remover.Reversible(), remover.Target())

	return nil
}

// scan is the shared half of both use cases: funnel, plan, render and
// persist. Report files are only written when duplicates were found.
func (w *workflow) scan(ctx context.Context, args ScanArgs) (m.ScanReport, error) {
	slog.Info("Scan started", "root", args.Root, "workers", args.Workers, "verify", args.Verify)

	groups, err := w.funnel.FindDuplicates(ctx, FindArgs{
		Root:     args.Root,
		Workers:  args.Workers,
		MinSize:  args.MinSize,
		SkipDirs: args.SkipDirs,
		Verify:   args.Verify,
	})
	if err != nil {
		slog.Error("Scan failed", "root", args.Root, "error", err)
		return m.ScanReport{}, fmt.Errorf("find duplicates: %w", err)
	}

	plan := buildPlan(groups)

	report := m.ScanReport{
		ID:        uuid.NewString(),
		Root:      args.Root,
		CreatedAt: time.Now(),
		Stats:     plan.Stats,
		Plan:      plan,
	}

	w.ui.Summary(ctx, plan.Stats, groups)

	if plan.Stats.Groups == 0 {
		slog.Info("Scan completed, no duplicates", "root", args.Root, "scan_id", report.ID)
		return report, nil
	}

	if args.LogFile != "" {
		if err := w.reports.WriteLog(args.LogFile, report); err != nil {
			slog.Error("Failed to write duplicate log", "path", args.LogFile, "error", err)
			return report, fmt.Errorf("write duplicate log: %w", err)
		}

		w.ui.Notice(ctx, fmt.Sprintf("Duplicate log written to %s", args.LogFile))
	}

	if args.PlanFile != "" {
		if err := w.reports.ExportPlan(args.PlanFile, report); err != nil {
			slog.Error("Failed to export deletion plan", "path", args.PlanFile, "error", err)
			return report, fmt.Errorf("export deletion plan: %w", err)
		}

		w.ui.Notice(ctx, fmt.Sprintf("Deletion plan exported to %s", args.PlanFile))
	}

	slog.Info("Scan completed", "root", args.Root, "scan_id", report.ID,
		"groups", plan.Stats.Groups, "duplicates", plan.Stats.Delete,
		"wasted_bytes", plan.Stats.WastedBytes)

	return report, nil
}

// removerFor selects the deletion mechanism: a relocating trash remover
// by default, permanent removal on request. A relative trash directory
// is anchored at the scan root.
func removerFor(args CleanArgs) adapter.Remover {
	if args.Permanent {
		return adapter.NewPermanentRemover()
	}

	dir := args.TrashDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(string(args.Root), dir)
	}

	return adapter.NewTrashRemover(dir)
}

func cleanPrompt(stats m.ScanStats, remover adapter.Remover) string {
	action := fmt.Sprintf("move %d duplicate file(s) to %s", stats.Delete, remover.Target())
	if !remover.Reversible() {
		action = fmt.Sprintf("permanently delete %d duplicate file(s)", stats.Delete)
	}

	return fmt.Sprintf("About to %s, reclaiming %s. Continue?", action, pkg.FormatBytes(stats.WastedBytes))
}
