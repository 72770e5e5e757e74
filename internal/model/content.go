package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentNode is one flattened, position-tagged unit of text from a page's
// pruned content hierarchy. Nodes never exist without a committed parent
// page row; the database layer enforces that with a foreign key and a
// single transaction per page.
type ContentNode struct {
	// PageID is the generated identity of the owning page row.
	// It is zero until the page row has been inserted.
	PageID int64

	// TagType is the lowercase tag name of the source element (p, h1, li, ...).
	TagType string

	// SequencePath is the dot-delimited position of the node in the content
	// tree, e.g. "2.1.3". Siblings are numbered from 1 in document order and
	// a child's path is its parent's path plus its own index.
	SequencePath string

	// Level is the 0-based depth of the node within the content tree.
	// It counts pruned-tree nesting, not raw markup nesting.
	Level int

	// Text is the full flattened inner text of the element, including text
	// of any descendant, trimmed and whitespace-collapsed. Ancestor nodes
	// deliberately repeat text that deeper nodes also carry: the hierarchy
	// records nesting, not a partition of the page text.
	Text string
}

// ChildPath returns the sequence path for the idx-th surviving child
// (1-based) of the node at parentPath. An empty parentPath addresses the
// root level, so the first root node gets path "1".
func ChildPath(parentPath string, idx int) string {
	if parentPath == "" {
		return strconv.Itoa(idx)
	}
	return parentPath + "." + strconv.Itoa(idx)
}

// ParentPath returns the sequence path of the node's parent, or "" for a
// root-level node.
func ParentPath(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// SiblingIndex returns the node's 1-based index among its surviving
// siblings, parsed from the last path segment.
func SiblingIndex(path string) (int, error) {
	seg := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		seg = path[i+1:]
	}
	n, err := strconv.Atoi(seg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid sequence path segment %q", seg)
	}
	return n, nil
}

// Validate checks the node's internal invariants: a non-empty tag and text,
// a well-formed sequence path, and a level consistent with the path depth
// (segment count must equal level+1).
func (n *ContentNode) Validate() error {
	if n.TagType == "" {
		return fmt.Errorf("content node %q has no tag type", n.SequencePath)
	}
	if strings.TrimSpace(n.Text) == "" {
		return fmt.Errorf("content node %q has empty text", n.SequencePath)
	}
	if n.Level < 0 {
		return fmt.Errorf("content node %q has negative level %d", n.SequencePath, n.Level)
	}
	segs := strings.Split(n.SequencePath, ".")
	for _, s := range segs {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return fmt.Errorf("content node has malformed sequence path %q", n.SequencePath)
		}
	}
	if len(segs) != n.Level+1 {
		return fmt.Errorf("content node %q: path depth %d does not match level %d",
			n.SequencePath, len(segs), n.Level)
	}
	return nil
}
