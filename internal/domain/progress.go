package domain

import m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"

// ProgressSink receives scan progress callbacks. Implementations must
// be cheap and must not block; the pipeline calls them inline at sparse
// checkpoints.
type ProgressSink interface {
	// StageStarted announces a stage and how many files enter it.
	// Traversal starts with an unknown count and reports zero.
	StageStarted(stage m.Stage, candidates int)
	// StageProgress reports processed counts at checkpoints. total is
	// zero when the stage size is unknown.
	StageProgress(stage m.Stage, done, total int)
	// StageCompleted reports how many files survived the stage.
	StageCompleted(stage m.Stage, survivors int)
}

// NopProgress discards all progress callbacks.
type NopProgress struct{}

// StageStarted implements ProgressSink.
func (NopProgress) StageStarted(m.Stage, int) {}

// StageProgress implements ProgressSink.
func (NopProgress) StageProgress(m.Stage, int, int) {}

// StageCompleted implements ProgressSink.
func (NopProgress) StageCompleted(m.Stage, int) {}
