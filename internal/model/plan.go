package model

import "time"

// PlanEntry marks one file for deletion in favor of its kept duplicate.
// Size is the shared content size, carried so reporting and statistics
// never have to re-read the disk.
type PlanEntry struct {
	Delete FileRecord
	Keep   FileRecord
	Size   int64
}

// DeletionPlan is the outcome of planning a scan. Entries belonging to
// the same duplicate group are contiguous, and Stats is derived from
// exactly the groups the entries came from.
type DeletionPlan struct {
	Entries []PlanEntry
	Stats   ScanStats
}

// ScanStats aggregates one scan. TotalBytes counts a single kept copy
// per group; WastedBytes counts the redundant copies a clean would
// reclaim.
type ScanStats struct {
	Groups      int
	Files       int
	Keep        int
	Delete      int
	TotalBytes  int64
	WastedBytes int64
}

// ScanReport bundles everything a reporting sink needs to render one
// scan: a unique identifier, the scanned root and the full plan.
type ScanReport struct {
	ID        string
	Root      Path
	CreatedAt time.Time
	Stats     ScanStats
	Plan      DeletionPlan
}

// CleanResult summarizes a plan execution. A failed removal never stops
// the remaining entries, so Deleted+Failed equals the attempted count.
type CleanResult struct {
	Deleted    int
	Failed     int
	FreedBytes int64
}
