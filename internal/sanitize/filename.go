package sanitize

import (
	"regexp"
	"strings"
)

const (
	// MaxComponentLength is the maximum allowed length for an identifier used in a filename.
	MaxComponentLength = 120
	// DefaultComponent replaces identifiers that sanitize to nothing.
	DefaultComponent = "unknown"
)

var unsafeChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// Component turns a remote identifier into a single path element that cannot
// escape its directory. Identifiers the service issues (letters, digits, '-'
// and '_') pass through unchanged.
func Component(id string) string {
	name := strings.TrimSpace(id)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, ". ")
	if len(name) > MaxComponentLength {
		name = name[:MaxComponentLength]
	}
	if name == "" {
		return DefaultComponent
	}
	return name
}
