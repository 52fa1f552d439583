// Package textutil formats durations and titles for console output.
package textutil

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FormatDuration renders seconds as M:SS, or H:MM:SS from one hour up.
// Fractional seconds are truncated.
func FormatDuration(seconds float64) string {
	total := int64(math.Floor(seconds))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
	}
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// TruncateTitle shortens title to maxLen characters ending in "...". Titles
// at most three characters over the limit are kept whole.
func TruncateTitle(title string, maxLen int) string {
	r := []rune(title)
	if len(r) < maxLen+3 {
		return title
	}
	keep := max(maxLen-3, 0)
	return string(r[:keep]) + "..."
}

// SortKey normalizes a title for case-insensitive ordering.
func SortKey(title string) string {
	// Casers keep state and are not shared.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(title)))
}
