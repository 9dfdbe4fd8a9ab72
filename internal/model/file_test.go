package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageString(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageTraversal, "traversal"},
		{StagePartialDigest, "partial-digest"},
		{StageFullDigest, "full-digest"},
		{StageVerify, "verify"},
		{Stage(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stage.String())
		})
	}
}

func TestDuplicateGroupFileSize(t *testing.T) {
	group := DuplicateGroup{
		Digest: "abc",
		Files: []FileRecord{
			{Path: "/sd/a.bin", Size: 2048},
			{Path: "/sd/b.bin", Size: 2048},
		},
	}

	assert.Equal(t, int64(2048), group.FileSize())
	assert.Equal(t, int64(0), DuplicateGroup{}.FileSize())
}
