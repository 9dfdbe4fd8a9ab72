package domain

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"github.com/necromindcom/r36s-duplicate-cleaner/internal/adapter"
	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// traversalProgressEvery keeps traversal checkpoints sparse on large trees.
const traversalProgressEvery = 1000

// FindArgs contains the arguments for one duplicate scan.
type FindArgs struct {
	Root     m.Path
	Workers  int
	MinSize  int64
	SkipDirs []string
	Verify   bool
}

// Funnel narrows a directory tree down to groups of byte-identical files.
type Funnel interface {
	FindDuplicates(ctx context.Context, args FindArgs) ([]m.DuplicateGroup, error)
}

type funnel struct {
	tree     adapter.TreeSource
	progress ProgressSink
}

// NewFunnel creates a Funnel reading files from tree and reporting
// stage checkpoints to progress.
func NewFunnel(tree adapter.TreeSource, progress ProgressSink) Funnel {
	if progress == nil {
		progress = NopProgress{}
	}

	return &funnel{tree: tree, progress: progress}
}

// partialKey groups files by size and prefix digest. Size stays in the
// key so equal prefixes of differently sized files can never merge.
type partialKey struct {
	size   int64
	digest string
}

// FindDuplicates runs the staged funnel: group by size, regroup the
// survivors by partial digest, regroup again by full digest. A file
// only reaches the next stage while it shares a key with at least one
// other file, and files that become unreadable are dropped at whichever
// stage they fail. An empty result means the tree holds no duplicates.
func (f *funnel) FindDuplicates(ctx context.Context, args FindArgs) ([]m.DuplicateGroup, error) {
	workers := args.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	f.progress.StageStarted(m.StageTraversal, 0)

	seen := 0
	sizes := make(map[int64][]m.FileRecord)

	err := f.tree.Walk(args.Root, args.SkipDirs, args.MinSize, func(file m.FileRecord) {
		sizes[file.Size] = append(sizes[file.Size], file)

		seen++
		if seen%traversalProgressEvery == 0 {
			f.progress.StageProgress(m.StageTraversal, seen, 0)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", args.Root, err)
	}

	candidates := survivors(sizes)
	f.progress.StageCompleted(m.StageTraversal, len(candidates))
	slog.Debug("Size grouping completed", "files", seen, "candidates", len(candidates))

	if len(candidates) == 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.progress.StageStarted(m.StagePartialDigest, len(candidates))

	outcomes := digestBatch(ctx, candidates, partialDigest, workers, partialChunkSize, func(done, total int) {
		f.progress.StageProgress(m.StagePartialDigest, done, total)
	})

	// Regrouping iterates the candidate slice, not the outcome map, so
	// members keep their traversal order inside each bucket.
	partials := make(map[partialKey][]m.FileRecord)
	dropped := 0

	for _, file := range candidates {
		outcome, ok := outcomes[file.Path]
		if !ok || outcome.err != nil {
			dropped++
			continue
		}

		key := partialKey{size: file.Size, digest: outcome.digest}
		partials[key] = append(partials[key], file)
	}

	if dropped > 0 {
		slog.Debug("Dropped unreadable files", "stage", m.StagePartialDigest.String(), "count", dropped)
	}

	candidates = survivors(partials)
	f.progress.StageCompleted(m.StagePartialDigest, len(candidates))

	if len(candidates) == 0 {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.progress.StageStarted(m.StageFullDigest, len(candidates))

	outcomes = digestBatch(ctx, candidates, fullDigest, workers, fullChunkSize, func(done, total int) {
		f.progress.StageProgress(m.StageFullDigest, done, total)
	})

	fulls := make(map[string][]m.FileRecord)
	dropped = 0

	for _, file := range candidates {
		outcome, ok := outcomes[file.Path]
		if !ok || outcome.err != nil {
			dropped++
			continue
		}

		fulls[outcome.digest] = append(fulls[outcome.digest], file)
	}

	if dropped > 0 {
		slog.Debug("Dropped unreadable files", "stage", m.StageFullDigest.String(), "count", dropped)
	}

	groups := make([]m.DuplicateGroup, 0, len(fulls))
	duplicates := 0

	for digest, files := range fulls {
		if len(files) < 2 {
			continue
		}

		groups = append(groups, m.DuplicateGroup{Digest: digest, Files: files})
		duplicates += len(files)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Files[0].Path < groups[j].Files[0].Path
	})

	f.progress.StageCompleted(m.StageFullDigest, duplicates)

	if args.Verify && len(groups) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups = f.verifyGroups(groups)
	}

	return groups, nil
}

// verifyGroups byte-compares every group member against the first file
// of its group and drops members whose content disagrees with the
// digest verdict. Groups shrinking below two members disappear.
func (f *funnel) verifyGroups(groups []m.DuplicateGroup) []m.DuplicateGroup {
	fileCount := 0
	for _, group := range groups {
		fileCount += len(group.Files)
	}

	f.progress.StageStarted(m.StageVerify, fileCount)

	verified := make([]m.DuplicateGroup, 0, len(groups))
	kept := 0

	for _, group := range groups {
		reference := group.Files[0]
		files := []m.FileRecord{reference}

		for _, file := range group.Files[1:] {
			same, err := sameContent(reference.Path, file.Path)
			if err != nil {
				slog.Warn("Verification read failed", "path", file.Path, "error", err)
				continue
			}

			if !same {
				slog.Warn("Digest collision rejected by byte comparison",
					"path", file.Path, "reference", reference.Path)
				continue
			}

			files = append(files, file)
		}

		if len(files) < 2 {
			continue
		}

		kept += len(files)
		verified = append(verified, m.DuplicateGroup{Digest: group.Digest, Files: files})
	}

	f.progress.StageCompleted(m.StageVerify, kept)

	return verified
}

// survivors flattens every bucket that still holds two or more files,
// keeping the per-bucket order intact.
func survivors[K comparable](buckets map[K][]m.FileRecord) []m.FileRecord {
	var files []m.FileRecord

	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}

		files = append(files, bucket...)
	}

	return files
}
