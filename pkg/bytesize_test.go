package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{name: "zero", n: 0, want: "0 B"},
		{name: "bytes", n: 512, want: "512 B"},
		{name: "just below one KiB", n: 1023, want: "1023 B"},
		{name: "one KiB", n: 1024, want: "1.0 KiB"},
		{name: "one and a half KiB", n: 1536, want: "1.5 KiB"},
		{name: "one MiB", n: 1024 * 1024, want: "1.0 MiB"},
		{name: "seven hundred MiB", n: 700 * 1024 * 1024, want: "700.0 MiB"},
		{name: "five GiB", n: 5 * 1024 * 1024 * 1024, want: "5.0 GiB"},
		{name: "two TiB", n: 2 * 1024 * 1024 * 1024 * 1024, want: "2.0 TiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.n))
		})
	}
}
