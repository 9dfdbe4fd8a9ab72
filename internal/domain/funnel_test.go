package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/necromindcom/r36s-duplicate-cleaner/internal/adapter"
	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// staticTree feeds a fixed record list into the funnel, bypassing the
// filesystem walk.
type staticTree struct {
	files []m.FileRecord
	err   error
}

func (s staticTree) Walk(_ m.Path, _ []string, _ int64, visit func(m.FileRecord)) error {
	if s.err != nil {
		return s.err
	}

	for _, file := range s.files {
		visit(file)
	}

	return nil
}

func newFunnelOver(tree adapter.TreeSource) Funnel {
	return NewFunnel(tree, NopProgress{})
}

// duplicateTree lays out a root with two duplicate sets plus decoys
// that survive exactly one stage each: same-size files with different
// prefixes, and same-prefix files with different tails.
func duplicateTree(t *testing.T) (string, []m.Path) {
	t.Helper()

	root := t.TempDir()
	base := time.Unix(1700000000, 0)

	alpha := "duplicate-content-alpha"
	dup1 := writeFixture(t, root, "a/dup1.bin", alpha, base)
	dup2 := writeFixture(t, root, "b/dup2.bin", alpha, base.Add(time.Hour))
	dup3 := writeFixture(t, root, "dup3.bin", alpha, base.Add(2*time.Hour))

	beta := strings.Repeat("beta", 4096)
	pair1 := writeFixture(t, root, "pair1.dat", beta, base)
	pair2 := writeFixture(t, root, "pair2.dat", beta, base.Add(time.Minute))

	// Same size, different first bytes: eliminated by the partial stage.
	writeFixture(t, root, "unique1.txt", "solo-one", base)
	writeFixture(t, root, "unique2.txt", "solo-two", base)

	// Same size and prefix, different tails: eliminated by the full stage.
	prefix := strings.Repeat("p", PartialReadSize)
	writeFixture(t, root, "prefix1.bin", prefix+"-x", base)
	writeFixture(t, root, "prefix2.bin", prefix+"-y", base)

	return root, []m.Path{dup1, dup2, dup3, pair1, pair2}
}

// groupPaths normalizes groups into path slices for comparison.
func groupPaths(groups []m.DuplicateGroup) [][]m.Path {
	out := make([][]m.Path, 0, len(groups))
	for _, group := range groups {
		paths := make([]m.Path, 0, len(group.Files))
		for _, file := range group.Files {
			paths = append(paths, file.Path)
		}

		out = append(out, paths)
	}

	return out
}

func TestFindDuplicates_GroupsByteIdenticalFiles(t *testing.T) {
	root, expected := duplicateTree(t)
	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{Root: m.Path(root), Workers: 2})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// Groups come back ordered by their first member's path, members in
	// traversal order.
	assert.Equal(t, [][]m.Path{
		{expected[0], expected[1], expected[2]},
		{expected[3], expected[4]},
	}, groupPaths(groups))

	for _, group := range groups {
		assert.NotEmpty(t, group.Digest)

		reference := group.Files[0]
		for _, file := range group.Files[1:] {
			assert.Equal(t, reference.Size, file.Size)

			same, err := sameContent(reference.Path, file.Path)
			require.NoError(t, err)
			assert.True(t, same, "%s and %s must be byte-identical", reference.Path, file.Path)
		}
	}
}

func TestFindDuplicates_WorkerCountsAgree(t *testing.T) {
	root, _ := duplicateTree(t)

	var baseline [][]m.Path

	for _, workers := range []int{1, 2, 8} {
		funnel := newFunnelOver(adapter.NewLocalTreeWalker())

		groups, err := funnel.FindDuplicates(context.Background(), FindArgs{Root: m.Path(root), Workers: workers})
		require.NoError(t, err)

		if baseline == nil {
			baseline = groupPaths(groups)
			continue
		}

		assert.Equal(t, baseline, groupPaths(groups), "workers=%d must not change the result", workers)
	}
}

func TestFindDuplicates_EmptyRoot(t *testing.T) {
	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{Root: m.Path(t.TempDir()), Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindDuplicates_NoDuplicates(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeFixture(t, root, "one.txt", "first", now)
	writeFixture(t, root, "two.txt", "second but longer", now)
	writeFixture(t, root, "three.txt", "third, longer still", now)

	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{Root: m.Path(root), Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFindDuplicates_MinSizeFilters(t *testing.T) {
	root, _ := duplicateTree(t)
	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	// Every fixture except the beta pair is below this threshold.
	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{
		Root:    m.Path(root),
		Workers: 1,
		MinSize: 1024,
	})
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.GreaterOrEqual(t, groups[0].FileSize(), int64(1024))
}

func TestFindDuplicates_SkipDirsPruneSubtrees(t *testing.T) {
	root := t.TempDir()
	base := time.Unix(1700000000, 0)

	content := "shadowed duplicate content"
	writeFixture(t, root, "keep/original.bin", content, base)
	writeFixture(t, root, "ignored/copy.bin", content, base.Add(time.Hour))

	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{
		Root:     m.Path(root),
		Workers:  1,
		SkipDirs: []string{"ignored"},
	})
	require.NoError(t, err)
	assert.Empty(t, groups, "the only surviving copy has no partner")
}

func TestFindDuplicates_UnreadableCandidatesAreDropped(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(1700000000, 0)

	content := "real file content"
	real1 := writeFixture(t, dir, "real1.bin", content, base)
	real2 := writeFixture(t, dir, "real2.bin", content, base.Add(time.Minute))

	// The ghost shares the size bucket but vanished between traversal
	// and hashing.
	records := []m.FileRecord{
		{Path: real1, Size: int64(len(content)), MTime: base},
		{Path: real2, Size: int64(len(content)), MTime: base.Add(time.Minute)},
		{Path: m.Path(dir + "/ghost.bin"), Size: int64(len(content)), MTime: base},
	}

	funnel := newFunnelOver(staticTree{files: records})

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{Workers: 1})
	require.NoError(t, err)

	require.Len(t, groups, 1)
	assert.Equal(t, [][]m.Path{{real1, real2}}, groupPaths(groups))
}

func TestFindDuplicates_GhostOnlyPairYieldsNothing(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(1700000000, 0)

	content := "single real file"
	real := writeFixture(t, dir, "real.bin", content, base)

	records := []m.FileRecord{
		{Path: real, Size: int64(len(content)), MTime: base},
		{Path: m.Path(dir + "/ghost.bin"), Size: int64(len(content)), MTime: base},
	}

	funnel := newFunnelOver(staticTree{files: records})

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{Workers: 1})
	require.NoError(t, err)
	assert.Empty(t, groups, "a pruned partner leaves a singleton behind")
}

func TestFindDuplicates_WalkErrorIsFatal(t *testing.T) {
	walkErr := errors.New("bad root")
	funnel := newFunnelOver(staticTree{err: walkErr})

	_, err := funnel.FindDuplicates(context.Background(), FindArgs{Root: "nowhere", Workers: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, walkErr)
}

func TestFindDuplicates_CancelledContext(t *testing.T) {
	root, _ := duplicateTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	_, err := funnel.FindDuplicates(ctx, FindArgs{Root: m.Path(root), Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFindDuplicates_VerifyKeepsRealDuplicates(t *testing.T) {
	root, expected := duplicateTree(t)
	funnel := newFunnelOver(adapter.NewLocalTreeWalker())

	groups, err := funnel.FindDuplicates(context.Background(), FindArgs{
		Root:    m.Path(root),
		Workers: 2,
		Verify:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, [][]m.Path{
		{expected[0], expected[1], expected[2]},
		{expected[3], expected[4]},
	}, groupPaths(groups))
}

func TestVerifyGroups_DropsContentMismatches(t *testing.T) {
	dir := t.TempDir()
	base := time.Unix(1700000000, 0)

	twinA := writeFixture(t, dir, "twin_a.bin", "identical twins", base)
	twinB := writeFixture(t, dir, "twin_b.bin", "identical twins", base)
	odd := writeFixture(t, dir, "odd.bin", "identical-twins", base)

	record := func(path m.Path) m.FileRecord {
		return m.FileRecord{Path: path, Size: int64(len("identical twins")), MTime: base}
	}

	f := &funnel{progress: NopProgress{}}

	t.Run("mismatching member is dropped", func(t *testing.T) {
		groups := f.verifyGroups([]m.DuplicateGroup{
			{Digest: "collision", Files: []m.FileRecord{record(twinA), record(twinB), record(odd)}},
		})

		require.Len(t, groups, 1)
		assert.Equal(t, [][]m.Path{{twinA, twinB}}, groupPaths(groups))
	})

	t.Run("group shrinking below two disappears", func(t *testing.T) {
		groups := f.verifyGroups([]m.DuplicateGroup{
			{Digest: "collision", Files: []m.FileRecord{record(twinA), record(odd)}},
		})

		assert.Empty(t, groups)
	})
}
