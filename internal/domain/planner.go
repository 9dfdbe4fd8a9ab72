package domain

import (
	"sort"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// buildPlan turns duplicate groups into keep and delete decisions.
// Within a group the member with the earliest modification time is
// kept; equal timestamps fall back to discovery order, which the stable
// sort preserves. Groups are emitted ordered by keeper path so the same
// tree always yields the same plan. The input groups are not modified.
func buildPlan(groups []m.DuplicateGroup) m.DeletionPlan {
	ordered := make([]m.DuplicateGroup, 0, len(groups))

	for _, group := range groups {
		files := make([]m.FileRecord, len(group.Files))
		copy(files, group.Files)

		sort.SliceStable(files, func(i, j int) bool {
			return files[i].MTime.Before(files[j].MTime)
		})

		ordered = append(ordered, m.DuplicateGroup{Digest: group.Digest, Files: files})
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Files[0].Path < ordered[j].Files[0].Path
	})

	plan := m.DeletionPlan{}

	for _, group := range ordered {
		keep := group.Files[0]

		plan.Stats.Groups++
		plan.Stats.Files += len(group.Files)
		plan.Stats.Keep++
		plan.Stats.TotalBytes += keep.Size

		for _, duplicate := range group.Files[1:] {
			plan.Entries = append(plan.Entries, m.PlanEntry{
				Delete: duplicate,
				Keep:   keep,
				Size:   keep.Size,
			})

			plan.Stats.Delete++
			plan.Stats.WastedBytes += keep.Size
		}
	}

	return plan
}
