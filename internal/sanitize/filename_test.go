package sanitize

import (
	"strings"
	"testing"
)

func TestComponent_ServiceIDsUnchanged(t *testing.T) {
	for _, id := range []string{"PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf", "dQw4w9WgXcQ", "a-b_C9"} {
		if got := Component(id); got != id {
			t.Fatalf("Component(%q) = %q", id, got)
		}
	}
}

func TestComponent_Traversal(t *testing.T) {
	got := Component("../../etc/passwd")
	if strings.Contains(got, "/") || strings.HasPrefix(got, ".") {
		t.Fatalf("got %q", got)
	}
	if got != "_.._etc_passwd" {
		t.Fatalf("got %q", got)
	}
}

func TestComponent_Defaults(t *testing.T) {
	for _, id := range []string{"", "   ", "..", "."} {
		if got := Component(id); got != DefaultComponent {
			t.Fatalf("Component(%q) = %q", id, got)
		}
	}
}

func TestComponent_Long(t *testing.T) {
	got := Component(strings.Repeat("a", 200))
	if len(got) != MaxComponentLength {
		t.Fatalf("too long: %d", len(got))
	}
}
