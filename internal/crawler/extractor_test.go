package crawler

import (
	"strings"
	"testing"

	"github.com/yuseiito/pagetree/internal/model"
)

func extract(t *testing.T, baseURL, markup string) *ExtractResult {
	t.Helper()

	e, err := NewExtractor(baseURL)
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}
	result, err := e.Extract(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("failed to extract: %v", err)
	}
	return result
}

// TestExtractLinks tests link resolution and filtering.
func TestExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative hrefs against the page URL", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/p/q", `<html><body><a href="/a/b">x</a></body></html>`)
		if len(result.Links) != 1 {
			t.Fatalf("expected 1 link, got %d: %v", len(result.Links), result.Links)
		}
		if result.Links[0] != "https://x.com/a/b" {
			t.Errorf("expected https://x.com/a/b, got %q", result.Links[0])
		}
	})

	t.Run("absolute hrefs pass through unchanged", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><body><a href="http://other.example/page?id=2">x</a></body></html>`)
		if len(result.Links) != 1 || result.Links[0] != "http://other.example/page?id=2" {
			t.Errorf("unexpected links: %v", result.Links)
		}
	})

	t.Run("non-http schemes are excluded", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><body>
			<a href="mailto:a@b.com">mail</a>
			<a href="javascript:void(0)">js</a>
			<a href="tel:+123">tel</a>
			<a href="ftp://files.example/f">ftp</a>
			<a href="/ok">ok</a>
		</body></html>`)

		if len(result.Links) != 1 {
			t.Fatalf("expected 1 link, got %d: %v", len(result.Links), result.Links)
		}
		if result.Links[0] != "https://x.com/ok" {
			t.Errorf("unexpected link %q", result.Links[0])
		}
	})

	t.Run("duplicates are kept in document order", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><body>
			<a href="/b">1</a><a href="/a">2</a><a href="/b">3</a>
		</body></html>`)

		want := []string{"https://x.com/b", "https://x.com/a", "https://x.com/b"}
		if len(result.Links) != len(want) {
			t.Fatalf("expected %d links, got %d", len(want), len(result.Links))
		}
		for i, w := range want {
			if result.Links[i] != w {
				t.Errorf("link %d: expected %q, got %q", i, w, result.Links[i])
			}
		}
	})
}

// TestExtractContent tests the content hierarchy extraction.
func TestExtractContent(t *testing.T) {
	t.Parallel()

	t.Run("inlines bold wrappers and prunes empty elements", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/",
			`<html><body><p>Hello <b>World</b></p><div></div><h1>Title</h1></body></html>`)

		if len(result.Nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d: %+v", len(result.Nodes), result.Nodes)
		}

		p := result.Nodes[0]
		if p.SequencePath != "1" || p.Level != 0 || p.TagType != "p" || p.Text != "Hello World" {
			t.Errorf("unexpected first node: %+v", p)
		}

		h1 := result.Nodes[1]
		if h1.SequencePath != "2" || h1.Level != 0 || h1.TagType != "h1" || h1.Text != "Title" {
			t.Errorf("unexpected second node: %+v", h1)
		}
	})

	t.Run("lists produce nested paths", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/",
			`<html><body><ul><li>A</li><li>B</li></ul></body></html>`)

		if len(result.Nodes) != 3 {
			t.Fatalf("expected 3 nodes, got %d: %+v", len(result.Nodes), result.Nodes)
		}

		ul := result.Nodes[0]
		if ul.SequencePath != "1" || ul.Level != 0 || ul.TagType != "ul" || ul.Text != "A B" {
			t.Errorf("unexpected list node: %+v", ul)
		}

		li1 := result.Nodes[1]
		if li1.SequencePath != "1.1" || li1.Level != 1 || li1.TagType != "li" || li1.Text != "A" {
			t.Errorf("unexpected first item: %+v", li1)
		}

		li2 := result.Nodes[2]
		if li2.SequencePath != "1.2" || li2.Level != 1 || li2.TagType != "li" || li2.Text != "B" {
			t.Errorf("unexpected second item: %+v", li2)
		}
	})

	t.Run("disallowed wrappers drop their whole subtree", func(t *testing.T) {
		t.Parallel()

		// The paragraph inside <video> is lost; children of a pruned
		// element are not promoted.
		result := extract(t, "https://x.com/",
			`<html><body><video><p>caption</p></video><p>kept</p></body></html>`)

		if len(result.Nodes) != 1 {
			t.Fatalf("expected 1 node, got %d: %+v", len(result.Nodes), result.Nodes)
		}
		if result.Nodes[0].Text != "kept" || result.Nodes[0].SequencePath != "1" {
			t.Errorf("unexpected node: %+v", result.Nodes[0])
		}
	})

	t.Run("inline wrappers are transparent to nested structure", func(t *testing.T) {
		t.Parallel()

		// The span sits inside a <b>, but inlining makes it a direct child
		// of the paragraph, so it gets its own node.
		result := extract(t, "https://x.com/",
			`<html><body><p>foo <b><span>x</span></b></p></body></html>`)

		if len(result.Nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d: %+v", len(result.Nodes), result.Nodes)
		}
		if result.Nodes[0].TagType != "p" || result.Nodes[0].Text != "foo x" {
			t.Errorf("unexpected paragraph: %+v", result.Nodes[0])
		}
		span := result.Nodes[1]
		if span.TagType != "span" || span.SequencePath != "1.1" || span.Level != 1 || span.Text != "x" {
			t.Errorf("unexpected span node: %+v", span)
		}
	})

	t.Run("whitespace-only elements are pruned", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/",
			`<html><body><p>   </p><div>
			</div><p>real</p></body></html>`)

		if len(result.Nodes) != 1 {
			t.Fatalf("expected 1 node, got %d: %+v", len(result.Nodes), result.Nodes)
		}
		if result.Nodes[0].Text != "real" {
			t.Errorf("unexpected node: %+v", result.Nodes[0])
		}
	})

	t.Run("ancestor text includes descendant text", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/",
			`<html><body><div><p>one</p><p>two</p></div></body></html>`)

		if len(result.Nodes) != 3 {
			t.Fatalf("expected 3 nodes, got %d", len(result.Nodes))
		}
		if result.Nodes[0].Text != "one two" {
			t.Errorf("expected div text to duplicate children, got %q", result.Nodes[0].Text)
		}
	})

	t.Run("tag matching is case-insensitive", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/",
			`<html><body><P>Hello <B>World</B></P></body></html>`)

		if len(result.Nodes) != 1 {
			t.Fatalf("expected 1 node, got %d: %+v", len(result.Nodes), result.Nodes)
		}
		if result.Nodes[0].TagType != "p" || result.Nodes[0].Text != "Hello World" {
			t.Errorf("unexpected node: %+v", result.Nodes[0])
		}
	})

	t.Run("document order is pre-order across siblings", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><body>
			<section><h2>S1</h2><p>p1</p></section>
			<section><h2>S2</h2></section>
		</body></html>`)

		var paths []string
		for _, n := range result.Nodes {
			paths = append(paths, n.SequencePath)
		}
		want := []string{"1", "1.1", "1.2", "2", "2.1"}
		if len(paths) != len(want) {
			t.Fatalf("expected paths %v, got %v", want, paths)
		}
		for i := range want {
			if paths[i] != want[i] {
				t.Fatalf("expected paths %v, got %v", want, paths)
			}
		}
	})

	t.Run("sequence paths are unique and match levels", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><body>
			<div><ul><li>a</li><li><span>b</span></li></ul></div>
			<p>tail</p>
		</body></html>`)

		seen := make(map[string]bool)
		for _, n := range result.Nodes {
			if seen[n.SequencePath] {
				t.Errorf("duplicate sequence path %q", n.SequencePath)
			}
			seen[n.SequencePath] = true

			if err := n.Validate(); err != nil {
				// PageID is not set yet; Validate only checks path/level/text.
				t.Errorf("invalid node %+v: %v", n, err)
			}
			if got := len(strings.Split(n.SequencePath, ".")); got != n.Level+1 {
				t.Errorf("node %q: %d segments for level %d", n.SequencePath, got, n.Level)
			}
		}
	})

	t.Run("empty body yields zero nodes", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><head><title>t</title></head><body></body></html>`)
		if len(result.Nodes) != 0 {
			t.Errorf("expected no nodes, got %+v", result.Nodes)
		}
	})

	t.Run("deep nesting does not overflow", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		sb.WriteString("<html><body>")
		const depth = 2000
		for n := 0; n < depth; n++ {
			sb.WriteString("<div>x")
		}
		for n := 0; n < depth; n++ {
			sb.WriteString("</div>")
		}
		sb.WriteString("</body></html>")

		result := extract(t, "https://x.com/", sb.String())
		if len(result.Nodes) == 0 {
			t.Fatal("expected nodes from deeply nested markup")
		}
		last := result.Nodes[len(result.Nodes)-1]
		if last.Level != len(result.Nodes)-1 {
			t.Errorf("expected strictly increasing levels, last %+v of %d", last, len(result.Nodes))
		}
	})
}

// TestExtractTitle tests title extraction.
func TestExtractTitle(t *testing.T) {
	t.Parallel()

	result := extract(t, "https://x.com/",
		`<html><head><title>  My Page  </title></head><body><p>x</p></body></html>`)
	if result.Title != "My Page" {
		t.Errorf("expected title 'My Page', got %q", result.Title)
	}

	empty := extract(t, "https://x.com/", `<html><body><p>x</p></body></html>`)
	if empty.Title != "" {
		t.Errorf("expected empty title, got %q", empty.Title)
	}
}

// TestExtractResultShape sanity-checks the node slice is usable as-is.
func TestExtractResultShape(t *testing.T) {
	t.Parallel()

	result := extract(t, "https://x.com/", `<html><body><p>x</p></body></html>`)
	for _, n := range result.Nodes {
		var zero model.ContentNode
		if n.PageID != zero.PageID {
			t.Errorf("extractor must not assign page IDs, got %d", n.PageID)
		}
	}
}
