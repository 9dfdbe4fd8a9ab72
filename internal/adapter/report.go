package adapter

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
	"github.com/necromindcom/r36s-duplicate-cleaner/pkg"
)

// ReportWriter persists scan outcomes for later review.
type ReportWriter interface {
	// WriteLog renders the human readable duplicate log.
	WriteLog(path m.Path, report m.ScanReport) error
	// ExportPlan writes the machine readable deletion plan.
	ExportPlan(path m.Path, report m.ScanReport) error
}

// FileReportWriter writes reports to local files, replacing any
// previous report at the same path.
type FileReportWriter struct{}

// NewFileReportWriter creates a FileReportWriter.
func NewFileReportWriter() *FileReportWriter {
	return &FileReportWriter{}
}

const logSeparator = "============================================================"

// WriteLog writes a header with the scan identity and statistics, then
// one block per duplicate group listing the kept file followed by the
// copies marked for deletion.
func (w *FileReportWriter) WriteLog(path m.Path, report m.ScanReport) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", logSeparator)
	fmt.Fprintf(&b, "DUPLICATE FILE LOG\n")
	fmt.Fprintf(&b, "scan id: %s\n", report.ID)
	fmt.Fprintf(&b, "created: %s\n", report.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "root:    %s\n", report.Root)
	fmt.Fprintf(&b, "%s\n", logSeparator)
	fmt.Fprintf(&b, "duplicate groups: %d\n", report.Stats.Groups)
	fmt.Fprintf(&b, "files involved:   %d\n", report.Stats.Files)
	fmt.Fprintf(&b, "files to keep:    %d\n", report.Stats.Keep)
	fmt.Fprintf(&b, "files to delete:  %d\n", report.Stats.Delete)
	fmt.Fprintf(&b, "reclaimable:      %s\n", pkg.FormatBytes(report.Stats.WastedBytes))
	fmt.Fprintf(&b, "%s\n\n", logSeparator)

	var keeper m.Path

	for _, entry := range report.Plan.Entries {
		if entry.Keep.Path != keeper {
			if keeper != "" {
				b.WriteString("\n")
			}

			keeper = entry.Keep.Path
			fmt.Fprintf(&b, "KEEP   %s\n", keeper)
		}

		fmt.Fprintf(&b, "DELETE %s\n", entry.Delete.Path)
	}

	if err := os.WriteFile(string(path), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write duplicate log: %w", err)
	}

	return nil
}

// planDocument is the on-disk shape of an exported deletion plan.
type planDocument struct {
	ID        string          `yaml:"id"`
	Root      string          `yaml:"root"`
	CreatedAt time.Time       `yaml:"created_at"`
	Stats     planStats       `yaml:"stats"`
	Entries   []planEntryItem `yaml:"entries"`
}

type planStats struct {
	Groups      int   `yaml:"groups"`
	Files       int   `yaml:"files"`
	Keep        int   `yaml:"keep"`
	Delete      int   `yaml:"delete"`
	TotalBytes  int64 `yaml:"total_bytes"`
	WastedBytes int64 `yaml:"wasted_bytes"`
}

type planEntryItem struct {
	Delete string `yaml:"delete"`
	Keep   string `yaml:"keep"`
	Size   int64  `yaml:"size"`
}

// ExportPlan implements ReportWriter. The exported file is an output
// artifact only; scans never read plans back.
func (w *FileReportWriter) ExportPlan(path m.Path, report m.ScanReport) error {
	doc := planDocument{
		ID:        report.ID,
		Root:      string(report.Root),
		CreatedAt: report.CreatedAt,
		Stats: planStats{
			Groups:      report.Stats.Groups,
			Files:       report.Stats.Files,
			Keep:        report.Stats.Keep,
			Delete:      report.Stats.Delete,
			TotalBytes:  report.Stats.TotalBytes,
			WastedBytes: report.Stats.WastedBytes,
		},
		Entries: make([]planEntryItem, 0, len(report.Plan.Entries)),
	}

	for _, entry := range report.Plan.Entries {
		doc.Entries = append(doc.Entries, planEntryItem{
			Delete: string(entry.Delete.Path),
			Keep:   string(entry.Keep.Path),
			Size:   entry.Size,
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode deletion plan: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o644); err != nil {
		return fmt.Errorf("write deletion plan: %w", err)
	}

	return nil
}
