// Package pkg provides small utilities shared across the application layers.
package pkg

import "fmt"

// FormatBytes renders a byte count using binary units, e.g. "1.5 MiB".
// Counts below one KiB are printed as plain bytes.
func FormatBytes(n int64) string {
	const unit = 1024

	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
