// Package adapter contains the filesystem and reporting adapters that
// connect the duplicate pipeline to the outside world.
package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// ErrNotDirectory reports a scan root that exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// TreeSource produces the regular files living under a root path.
type TreeSource interface {
	// Walk visits every regular file under root in traversal order.
	// Directories whose basename appears in skipDirs are pruned with
	// their whole subtree, files smaller than minSize are ignored, and
	// entries whose metadata cannot be read are dropped. Only a bad
	// root makes Walk fail.
	Walk(root m.Path, skipDirs []string, minSize int64, visit func(m.FileRecord)) error
}

// LocalTreeWalker implements TreeSource on the local filesystem.
type LocalTreeWalker struct{}

// NewLocalTreeWalker creates a LocalTreeWalker.
func NewLocalTreeWalker() *LocalTreeWalker {
	return &LocalTreeWalker{}
}

// Walk implements TreeSource using filepath.WalkDir. Entries within a
// directory are visited in lexical order, which keeps traversal order
// stable between runs over an unchanged tree.
func (w *LocalTreeWalker) Walk(root m.Path, skipDirs []string, minSize int64, visit func(m.FileRecord)) error {
	rootPath, err := filepath.Abs(string(root))
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", rootPath, ErrNotDirectory)
	}

	skip := make(map[string]struct{}, len(skipDirs))
	for _, name := range skipDirs {
		skip[name] = struct{}{}
	}

	return filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}

			return nil
		}

		if entry.IsDir() {
			// The root itself is never pruned, even when its own
			// basename is on the skip list.
			if _, found := skip[entry.Name()]; found && path != rootPath {
				return fs.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		fileInfo, err := entry.Info()
		if err != nil {
			return nil
		}

		if fileInfo.Size() < minSize {
			return nil
		}

		visit(m.FileRecord{
			Path:  m.Path(path),
			Size:  fileInfo.Size(),
			MTime: fileInfo.ModTime(),
		})

		return nil
	})
}
