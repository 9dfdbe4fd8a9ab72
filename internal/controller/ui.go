// Package controller provides the output adapters that present scan
// progress and results to the user.
package controller

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
	"github.com/necromindcom/r36s-duplicate-cleaner/pkg"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeScan StartMode = iota
	ModeClean
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithScanMode sets the UI to dry-run scan mode.
func WithScanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeScan
	}
}

// WithCleanMode sets the UI to deletion mode.
func WithCleanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeClean
	}
}

// UI defines the interface for presenting scan progress and outcomes.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish rendering
	StageStarted(stage m.Stage, candidates int)
	StageProgress(stage m.Stage, done, total int)
	StageCompleted(stage m.Stage, survivors int)
	Summary(ctx context.Context, stats m.ScanStats, groups []m.DuplicateGroup)
	Notice(ctx context.Context, message string)
	Confirm(ctx context.Context, prompt string) bool
	CleanProgress(done, failed, total int)
	CleanSummary(ctx context.Context, result m.CleanResult, reversible bool, target string)
}

// NewUI selects the live TUI on interactive sessions and the plain
// writer otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout(), cmd.InOrStdin())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// summaryExampleGroups caps how many duplicate groups the summary lists.
const summaryExampleGroups = 5

// summaryExampleFiles caps how many members are listed per group.
const summaryExampleFiles = 4

// renderStatsTable renders the scan statistics shared by all UIs.
func renderStatsTable(stats m.ScanStats) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Append([]string{"Duplicate groups", fmt.Sprintf("%d", stats.Groups)})
	table.Append([]string{"Files involved", fmt.Sprintf("%d", stats.Files)})
	table.Append([]string{"Files to keep", fmt.Sprintf("%d", stats.Keep)})
	table.Append([]string{"Files to delete", fmt.Sprintf("%d", stats.Delete)})
	table.Append([]string{"Unique content", pkg.FormatBytes(stats.TotalBytes)})
	table.Append([]string{"Reclaimable", pkg.FormatBytes(stats.WastedBytes)})
	table.Render()

	return buf.String()
}

// renderExampleGroups lists the first few duplicate groups so the user
// can sanity check what a clean would touch.
func renderExampleGroups(groups []m.DuplicateGroup) string {
	var b strings.Builder

	shown := len(groups)
	if shown > summaryExampleGroups {
		shown = summaryExampleGroups
	}

	fmt.Fprintf(&b, "Examples (%d of %d groups):\n", shown, len(groups))

	for _, group := range groups[:shown] {
		fmt.Fprintf(&b, "  %d copies x %s\n", len(group.Files), pkg.FormatBytes(group.FileSize()))

		members := len(group.Files)
		if members > summaryExampleFiles {
			members = summaryExampleFiles
		}

		for _, file := range group.Files[:members] {
			fmt.Fprintf(&b, "    %s\n", file.Path)
		}

		if len(group.Files) > members {
			fmt.Fprintf(&b, "    ... and %d more copies\n", len(group.Files)-members)
		}
	}

	if len(groups) > shown {
		fmt.Fprintf(&b, "  ... and %d more groups\n", len(groups)-shown)
	}

	return b.String()
}

// renderCleanSummary renders the post-clean outcome shared by all UIs.
func renderCleanSummary(result m.CleanResult, reversible bool, target string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\nDeleted %d file(s), %d failure(s), reclaimed %s.\n",
		result.Deleted, result.Failed, pkg.FormatBytes(result.FreedBytes))

	if reversible && result.Deleted > 0 {
		fmt.Fprintf(&b, "Files were moved to %s; move them back to undo.\n", target)
	}

	return b.String()
}

// readConfirmation prints prompt on w and reads a yes/no answer from r.
// Anything but an explicit yes declines.
func readConfirmation(w io.Writer, r io.Reader, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes"
}
