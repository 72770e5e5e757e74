package model

import (
	"strings"
	"testing"
)

// TestChildPath tests sequence path construction.
func TestChildPath(t *testing.T) {
	t.Parallel()

	t.Run("root level paths have a single segment", func(t *testing.T) {
		t.Parallel()

		if got := ChildPath("", 1); got != "1" {
			t.Errorf("expected path \"1\", got %q", got)
		}
		if got := ChildPath("", 3); got != "3" {
			t.Errorf("expected path \"3\", got %q", got)
		}
	})

	t.Run("child paths append to the parent path", func(t *testing.T) {
		t.Parallel()

		if got := ChildPath("2.1", 3); got != "2.1.3" {
			t.Errorf("expected path \"2.1.3\", got %q", got)
		}
	})
}

// TestParentPath tests ancestor recovery from a sequence path.
func TestParentPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"1", ""},
		{"2.1", "2"},
		{"2.1.3", "2.1"},
	}

	for _, tt := range tests {
		if got := ParentPath(tt.path); got != tt.want {
			t.Errorf("ParentPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// TestSiblingIndex tests last-segment parsing.
func TestSiblingIndex(t *testing.T) {
	t.Parallel()

	t.Run("parses the last segment", func(t *testing.T) {
		t.Parallel()

		got, err := SiblingIndex("2.1.3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3 {
			t.Errorf("expected 3, got %d", got)
		}
	})

	t.Run("rejects non-numeric and non-positive segments", func(t *testing.T) {
		t.Parallel()

		if _, err := SiblingIndex("1.x"); err == nil {
			t.Error("expected error for non-numeric segment")
		}
		if _, err := SiblingIndex("1.0"); err == nil {
			t.Error("expected error for zero segment")
		}
	})
}

// TestContentNodeValidate tests the node invariants.
func TestContentNodeValidate(t *testing.T) {
	t.Parallel()

	valid := ContentNode{TagType: "p", SequencePath: "2.1", Level: 1, Text: "hello"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid node, got %v", err)
	}

	t.Run("path depth must equal level plus one", func(t *testing.T) {
		t.Parallel()

		n := valid
		n.Level = 2
		err := n.Validate()
		if err == nil {
			t.Fatal("expected error for mismatched level")
		}
		if !strings.Contains(err.Error(), "does not match level") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		n := valid
		n.Text = "   "
		if err := n.Validate(); err == nil {
			t.Error("expected error for whitespace-only text")
		}
	})

	t.Run("rejects malformed paths", func(t *testing.T) {
		t.Parallel()

		for _, path := range []string{"", "0", "1..2", "a.b"} {
			n := valid
			n.SequencePath = path
			n.Level = len(strings.Split(path, ".")) - 1
			if err := n.Validate(); err == nil {
				t.Errorf("expected error for path %q", path)
			}
		}
	})
}
