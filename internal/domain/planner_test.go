package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

func plannerRecord(path string, size int64, mtime time.Time) m.FileRecord {
	return m.FileRecord{Path: m.Path(path), Size: size, MTime: mtime}
}

func TestBuildPlan_KeepsOldestFile(t *testing.T) {
	base := time.Unix(1700000000, 0)

	newest := plannerRecord("/roms/gba/game (copy 2).gba", 4096, base.Add(2*time.Hour))
	oldest := plannerRecord("/roms/gba/game.gba", 4096, base)
	middle := plannerRecord("/roms/gba/game (copy 1).gba", 4096, base.Add(time.Hour))

	plan := buildPlan([]m.DuplicateGroup{
		{Digest: "abc", Files: []m.FileRecord{newest, oldest, middle}},
	})

	require.Len(t, plan.Entries, 2)

	for _, entry := range plan.Entries {
		assert.Equal(t, oldest, entry.Keep)
		assert.Equal(t, int64(4096), entry.Size)
	}

	assert.Equal(t, middle, plan.Entries[0].Delete)
	assert.Equal(t, newest, plan.Entries[1].Delete)
}

func TestBuildPlan_EqualTimestampsKeepDiscoveryOrder(t *testing.T) {
	mtime := time.Unix(1700000000, 0)

	first := plannerRecord("/sd/b/later-in-path.bin", 100, mtime)
	second := plannerRecord("/sd/a/earlier-in-path.bin", 100, mtime)

	plan := buildPlan([]m.DuplicateGroup{
		{Digest: "tie", Files: []m.FileRecord{first, second}},
	})

	require.Len(t, plan.Entries, 1)
	assert.Equal(t, first, plan.Entries[0].Keep)
	assert.Equal(t, second, plan.Entries[0].Delete)
}

func TestBuildPlan_Stats(t *testing.T) {
	base := time.Unix(1700000000, 0)

	plan := buildPlan([]m.DuplicateGroup{
		{Digest: "g1", Files: []m.FileRecord{
			plannerRecord("/sd/one_a.bin", 1000, base),
			plannerRecord("/sd/one_b.bin", 1000, base.Add(time.Minute)),
			plannerRecord("/sd/one_c.bin", 1000, base.Add(2*time.Minute)),
		}},
		{Digest: "g2", Files: []m.FileRecord{
			plannerRecord("/sd/two_a.bin", 64, base),
			plannerRecord("/sd/two_b.bin", 64, base.Add(time.Minute)),
		}},
	})

	assert.Equal(t, m.ScanStats{
		Groups:      2,
		Files:       5,
		Keep:        2,
		Delete:      3,
		TotalBytes:  1064,
		WastedBytes: 2064,
	}, plan.Stats)

	assert.Equal(t, plan.Stats.Files, plan.Stats.Keep+plan.Stats.Delete)
	assert.Len(t, plan.Entries, plan.Stats.Delete)
}

func TestBuildPlan_GroupsOrderedByKeeperPath(t *testing.T) {
	base := time.Unix(1700000000, 0)

	plan := buildPlan([]m.DuplicateGroup{
		{Digest: "zz", Files: []m.FileRecord{
			plannerRecord("/sd/zebra_a.bin", 10, base),
			plannerRecord("/sd/zebra_b.bin", 10, base.Add(time.Minute)),
		}},
		{Digest: "aa", Files: []m.FileRecord{
			plannerRecord("/sd/apple_a.bin", 10, base),
			plannerRecord("/sd/apple_b.bin", 10, base.Add(time.Minute)),
			plannerRecord("/sd/apple_c.bin", 10, base.Add(2*time.Minute)),
		}},
	})

	require.Len(t, plan.Entries, 3)

	keepers := make([]m.Path, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		keepers = append(keepers, entry.Keep.Path)
	}

	// Entries of one group stay contiguous and groups are sorted by
	// their keeper.
	assert.Equal(t, []m.Path{
		"/sd/apple_a.bin",
		"/sd/apple_a.bin",
		"/sd/zebra_a.bin",
	}, keepers)
}

func TestBuildPlan_DeterministicAcrossInputOrder(t *testing.T) {
	base := time.Unix(1700000000, 0)

	groupA := m.DuplicateGroup{Digest: "a", Files: []m.FileRecord{
		plannerRecord("/sd/a1.bin", 10, base.Add(time.Hour)),
		plannerRecord("/sd/a2.bin", 10, base),
	}}
	groupB := m.DuplicateGroup{Digest: "b", Files: []m.FileRecord{
		plannerRecord("/sd/b1.bin", 20, base),
		plannerRecord("/sd/b2.bin", 20, base.Add(time.Hour)),
	}}

	forward := buildPlan([]m.DuplicateGroup{groupA, groupB})
	backward := buildPlan([]m.DuplicateGroup{groupB, groupA})

	assert.Equal(t, forward, backward)
}

func TestBuildPlan_DoesNotModifyInput(t *testing.T) {
	base := time.Unix(1700000000, 0)

	files := []m.FileRecord{
		plannerRecord("/sd/new.bin", 10, base.Add(time.Hour)),
		plannerRecord("/sd/old.bin", 10, base),
	}
	groups := []m.DuplicateGroup{{Digest: "x", Files: files}}

	buildPlan(groups)

	assert.Equal(t, m.Path("/sd/new.bin"), files[0].Path)
	assert.Equal(t, m.Path("/sd/old.bin"), files[1].Path)
}

func TestBuildPlan_Empty(t *testing.T) {
	plan := buildPlan(nil)

	assert.Empty(t, plan.Entries)
	assert.Equal(t, m.ScanStats{}, plan.Stats)
}
