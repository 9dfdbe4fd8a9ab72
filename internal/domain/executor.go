package domain

import (
	"context"

	"golang.org/x/sync/errgroup"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// Chunk sizes trade dispatch overhead against load balance. The partial
// stage hashes a bounded prefix per file, so larger chunks are fine;
// the full stage reads whole files and spreads better in smaller ones.
const (
	partialChunkSize = 50
	fullChunkSize    = 20
)

// digestBatch applies fn to every file and returns the outcomes keyed
// by path. Every input file gets exactly one outcome, failures
// included; completion order is unspecified. With more than one worker
// the batch is split into chunks and fanned out over a bounded
// goroutine pool, otherwise it runs on the calling goroutine. A
// cancelled context stops the dispatch of further chunks but never
// interrupts files already being hashed, so the returned map may be
// partial. progress is invoked at chunk-sized checkpoints.
func digestBatch(ctx context.Context, files []m.FileRecord, fn digestFunc, workers, chunkSize int, progress func(done, total int)) map[m.Path]digestOutcome {
	results := make(map[m.Path]digestOutcome, len(files))
	if len(files) == 0 {
		return results
	}

	if chunkSize < 1 {
		chunkSize = 1
	}

	total := len(files)

	report := func(done int) {
		if progress != nil && (done%chunkSize == 0 || done == total) {
			progress(done, total)
		}
	}

	if workers <= 1 {
		for i, file := range files {
			if i%chunkSize == 0 && ctx.Err() != nil {
				break
			}

			digest, err := fn(file.Path)
			results[file.Path] = digestOutcome{digest: digest, err: err}
			report(i + 1)
		}

		return results
	}

	type fileOutcome struct {
		path    m.Path
		outcome digestOutcome
	}

	// Buffered to the batch size so workers never block on the results
	// channel; the collecting goroutine below is the only map writer.
	outcomes := make(chan fileOutcome, total)

	go func() {
		var group errgroup.Group
		group.SetLimit(workers)

		for _, chunk := range chunkRecords(files, chunkSize) {
			if ctx.Err() != nil {
				break
			}

			group.Go(func() error {
				for _, file := range chunk {
					digest, err := fn(file.Path)
					outcomes <- fileOutcome{
						path:    file.Path,
						outcome: digestOutcome{digest: digest, err: err},
					}
				}

				return nil
			})
		}

		_ = group.Wait()
		close(outcomes)
	}()

	done := 0
	for result := range outcomes {
		results[result.path] = result.outcome
		done++
		report(done)
	}

	return results
}

// chunkRecords splits files into contiguous chunks of at most size records.
func chunkRecords(files []m.FileRecord, size int) [][]m.FileRecord {
	chunks := make([][]m.FileRecord, 0, (len(files)+size-1)/size)

	for start := 0; start < len(files); start += size {
		end := start + size
		if end > len(files) {
			end = len(files)
		}

		chunks = append(chunks, files[start:end])
	}

	return chunks
}
