package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// SimpleUI implements UI using the cobra command's output writer. It
// prints one line per event and is safe for non-interactive sessions,
// pipes and log capture.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// StageStarted prints the stage banner.
func (s *SimpleUI) StageStarted(stage m.Stage, candidates int) {
	switch stage {
	case m.StageTraversal:
		s.printf("Scanning for files...\n")
	case m.StagePartialDigest:
		s.printf("Computing partial digests of %d candidates...\n", candidates)
	case m.StageFullDigest:
		s.printf("Computing full digests of %d candidates...\n", candidates)
	case m.StageVerify:
		s.printf("Verifying %d files byte by byte...\n", candidates)
	}
}

// StageProgress prints an occasional progress line.
func (s *SimpleUI) StageProgress(stage m.Stage, done, total int) {
	if total > 0 {
		s.printf("  %s: %d/%d\n", stage, done, total)
		return
	}

	s.printf("  %s: %d files\n", stage, done)
}

// StageCompleted prints the stage outcome.
func (s *SimpleUI) StageCompleted(stage m.Stage, survivors int) {
	switch stage {
	case m.StageTraversal:
		s.printf("  %d files share a size with at least one other file\n", survivors)
	case m.StagePartialDigest:
		s.printf("  %d candidates survived the partial digest\n", survivors)
	case m.StageFullDigest:
		s.printf("  %d files confirmed as duplicates\n", survivors)
	case m.StageVerify:
		s.printf("  %d files verified byte-identical\n", survivors)
	}
}

// Summary prints the scan statistics table plus a few example groups.
func (s *SimpleUI) Summary(ctx context.Context, stats m.ScanStats, groups []m.DuplicateGroup) {
	if err := ctx.Err(); err != nil {
		return
	}

	if stats.Groups == 0 {
		s.printf("\nNo duplicate files found.\n")
		return
	}

	s.printf("\n%s", renderStatsTable(stats))
	s.printf("\n%s", renderExampleGroups(groups))
}

// Notice prints a single informational line.
func (s *SimpleUI) Notice(ctx context.Context, message string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s\n", message)
}

// Confirm asks a yes/no question on the command's input stream.
func (s *SimpleUI) Confirm(ctx context.Context, prompt string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}

	return readConfirmation(s.cmd.OutOrStdout(), s.cmd.InOrStdin(), prompt)
}

// CleanProgress prints an occasional deletion progress line.
func (s *SimpleUI) CleanProgress(done, failed, total int) {
	s.printf("  removed %d/%d (%d failed)\n", done, total, failed)
}

// CleanSummary prints the post-clean outcome.
func (s *SimpleUI) CleanSummary(ctx context.Context, result m.CleanResult, reversible bool, target string) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s", renderCleanSummary(result, reversible, target))
}

func (s *SimpleUI) printf(format string, args ...any) {
	fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
