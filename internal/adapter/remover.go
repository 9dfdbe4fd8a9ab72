package adapter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// cleanProgressEvery keeps deletion progress callbacks sparse on large plans.
const cleanProgressEvery = 100

// Remover deletes a single file. Implementations decide whether the
// deletion can be undone.
type Remover interface {
	Remove(path m.Path) error
	// Reversible reports whether removed files can be restored by hand.
	Reversible() bool
	// Target names where removed files end up, for user-facing output.
	Target() string
}

// TrashRemover moves files into a trash directory instead of unlinking
// them, so a clean can be undone by moving them back.
type TrashRemover struct {
	dir string
}

// NewTrashRemover creates a TrashRemover that collects files under dir.
func NewTrashRemover(dir string) *TrashRemover {
	return &TrashRemover{dir: dir}
}

// Remove moves path into the trash directory under a name that cannot
// collide with files trashed earlier. Moves across filesystem
// boundaries fall back to copy and delete.
func (t *TrashRemover) Remove(path m.Path) error {
	if err := os.MkdirAll(t.dir, 0o750); err != nil {
		return fmt.Errorf("create trash directory: %w", err)
	}

	target := filepath.Join(t.dir, trashName(string(path)))

	err := os.Rename(string(path), target)
	if err == nil {
		return nil
	}

	if !isCrossDevice(err) {
		return fmt.Errorf("move to trash: %w", err)
	}

	if err := copyFile(string(path), target); err != nil {
		return fmt.Errorf("copy to trash: %w", err)
	}

	if err := os.Remove(string(path)); err != nil {
		return fmt.Errorf("remove original: %w", err)
	}

	return nil
}

// Reversible implements Remover.
func (t *TrashRemover) Reversible() bool { return true }

// Target implements Remover.
func (t *TrashRemover) Target() string { return t.dir }

// trashName derives a unique basename for a trashed file, keeping the
// extension so trashed files stay recognizable.
func trashName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	return fmt.Sprintf("%s_%d%s", stem, time.Now().UnixNano(), ext)
}

func isCrossDevice(err error) bool {
	var linkErr *os.LinkError

	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)

		return err
	}

	return out.Close()
}

// PermanentRemover unlinks files outright.
type PermanentRemover struct{}

// NewPermanentRemover creates a PermanentRemover.
func NewPermanentRemover() *PermanentRemover {
	return &PermanentRemover{}
}

// Remove implements Remover.
func (p *PermanentRemover) Remove(path m.Path) error {
	if err := os.Remove(string(path)); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}

	return nil
}

// Reversible implements Remover.
func (p *PermanentRemover) Reversible() bool { return false }

// Target implements Remover.
func (p *PermanentRemover) Target() string { return "permanent deletion" }

// ExecutePlan removes every planned file through remover. Failures are
// logged and counted, never fatal, so one stubborn file cannot stall
// the rest of the plan. progress is invoked at sparse checkpoints.
func ExecutePlan(plan m.DeletionPlan, remover Remover, progress func(done, failed int)) m.CleanResult {
	result := m.CleanResult{}

	for _, entry := range plan.Entries {
		if err := remover.Remove(entry.Delete.Path); err != nil {
			slog.Warn("Failed to remove duplicate", "path", entry.Delete.Path, "error", err)
			result.Failed++
		} else {
			result.Deleted++
			result.FreedBytes += entry.Size
		}

		if progress != nil && (result.Deleted+result.Failed)%cleanProgressEvery == 0 {
			progress(result.Deleted, result.Failed)
		}
	}

	return result
}
