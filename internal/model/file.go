// Package model defines the data types shared by the scan pipeline,
// the deletion planner and the presentation layers.
package model

import "time"

// Path represents a file system path.
type Path string

// FileRecord captures the identity of one regular file at scan time.
// Size and MTime come from the traversal stat call; later stages never
// stat the file again.
type FileRecord struct {
	Path  Path
	Size  int64
	MTime time.Time
}

// DuplicateGroup is a set of files whose content hashed to the same
// full digest. A group emitted by a scan always holds at least two
// members, listed in traversal order.
type DuplicateGroup struct {
	Digest string
	Files  []FileRecord
}

// FileSize returns the size shared by every member of the group.
func (g DuplicateGroup) FileSize() int64 {
	if len(g.Files) == 0 {
		return 0
	}

	return g.Files[0].Size
}

// Stage identifies one pass of the duplicate scan for progress reporting.
type Stage int

// Scan stages in execution order.
const (
	StageTraversal Stage = iota
	StagePartialDigest
	StageFullDigest
	StageVerify
)

func (s Stage) String() string {
	switch s {
	case StageTraversal:
		return "traversal"
	case StagePartialDigest:
		return "partial-digest"
	case StageFullDigest:
		return "full-digest"
	case StageVerify:
		return "verify"
	}

	return "unknown"
}
