package crawler

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/yuseiito/pagetree/internal/model"
)

// allowedTags is the allow-list of structural and semantic elements that
// become content nodes. Anything else is pruned together with its whole
// subtree; children of a disallowed element are not promoted.
var allowedTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "div": true, "span": true, "a": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "caption": true, "thead": true, "tbody": true,
	"tfoot": true, "tr": true, "td": true, "th": true,
	"section": true, "article": true, "header": true, "footer": true,
	"nav": true, "main": true, "aside": true,
	"figure": true, "figcaption": true,
	"blockquote": true, "code": true, "pre": true,
}

// inlineTags are purely presentational wrappers that are treated as
// transparent: the walk sees their children as if they were spliced into
// the parent, so <p>foo <b>bar</b></p> flattens to one paragraph and a
// <span> nested inside a <b> still becomes a node of its own.
var inlineTags = map[string]bool{
	"b": true, "i": true, "s": true, "strike": true, "u": true,
	"mark": true, "sup": true, "sub": true, "ins": true, "del": true,
}

// ExtractResult holds both outputs of one parse: the page metadata and
// link list for the frontier, and the ordered content hierarchy for the
// persister.
type ExtractResult struct {
	// Title is the text of the <title> element, trimmed. Empty when absent.
	Title string

	// Links are all anchor targets in document order, resolved against the
	// page URL and filtered to absolute http/https URLs. Duplicates are
	// kept; deduplication is the frontier's job.
	Links []string

	// Nodes is the content hierarchy in document pre-order: each node
	// before its children, children before later siblings.
	Nodes []model.ContentNode
}

// Extractor parses one page's markup. It is created per page because link
// resolution needs the page's own URL as base.
type Extractor struct {
	baseURL *url.URL
}

// NewExtractor creates an Extractor resolving relative links against baseURL.
func NewExtractor(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{baseURL: u}, nil
}

// Extract parses the body and produces links and content nodes.
// A document without a <body> yields zero nodes and no error.
func (e *Extractor) Extract(r io.Reader) (*ExtractResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{
		Links: make([]string, 0),
		Nodes: make([]model.ContentNode, 0),
	}

	e.collectMeta(doc, result)

	if body := findElement(doc, "body"); body != nil {
		result.Nodes = extractContent(body)
	}

	return result, nil
}

// collectMeta walks the whole document for the title and all anchor hrefs,
// in document order.
func (e *Extractor) collectMeta(doc *html.Node, result *ExtractResult) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if result.Title == "" {
					result.Title = strings.TrimSpace(flattenText(n))
				}
			case "a":
				if href := attrValue(n, "href"); href != "" {
					if resolved := e.resolveLink(href); resolved != "" {
						result.Links = append(result.Links, resolved)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// resolveLink resolves an href against the page URL and returns it only if
// the result is an absolute http or https URL. Everything else (mailto:,
// javascript:, bare fragments, malformed values) is dropped.
func (e *Extractor) resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := e.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" {
		return ""
	}

	return resolved.String()
}

// walkFrame is one level of the iterative content walk: the surviving-child
// candidates of one parent, the parent's path and level, and the running
// sibling counter for nodes that survive.
type walkFrame struct {
	children []*html.Node
	next     int
	path     string
	level    int
	count    int
}

// extractContent builds the content hierarchy under body. The traversal is
// iterative with an explicit frame stack, so adversarially deep markup
// cannot grow the call stack, and it emits nodes in document pre-order.
func extractContent(body *html.Node) []model.ContentNode {
	nodes := make([]model.ContentNode, 0)

	stack := []*walkFrame{{children: contentChildren(body), path: "", level: 0}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.next >= len(frame.children) {
			stack = stack[:len(stack)-1]
			continue
		}

		n := frame.children[frame.next]
		frame.next++

		tag := strings.ToLower(n.Data)
		if !allowedTags[tag] {
			continue
		}
		text := flattenText(n)
		if text == "" {
			continue
		}

		frame.count++
		path := model.ChildPath(frame.path, frame.count)

		nodes = append(nodes, model.ContentNode{
			TagType:      tag,
			SequencePath: path,
			Level:        frame.level,
			Text:         text,
		})

		stack = append(stack, &walkFrame{
			children: contentChildren(n),
			path:     path,
			level:    frame.level + 1,
		})
	}

	return nodes
}

// contentChildren returns n's element children with presentational inline
// wrappers expanded in place: a <b> child contributes its own element
// children instead of itself. The parsed tree is never mutated; this is a
// read-only view of the flattened structure.
func contentChildren(n *html.Node) []*html.Node {
	children := make([]*html.Node, 0)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if inlineTags[strings.ToLower(c.Data)] {
			children = append(children, contentChildren(c)...)
			continue
		}
		children = append(children, c)
	}
	return children
}

// flattenText returns the full inner text of n, including every
// descendant's text regardless of tag, with each text fragment trimmed and
// fragments joined by single spaces. The result is NFC-normalized. Empty
// means the element carries no visible text and is pruned.
func flattenText(n *html.Node) string {
	var parts []string

	// Depth-first with an explicit stack, children pushed in reverse so
	// text fragments come out in document order.
	stack := []*html.Node{n}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, strings.Join(strings.Fields(t), " "))
			}
			continue
		}
		for c := node.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}

	return norm.NFC.String(strings.Join(parts, " "))
}

// findElement returns the first element with the given tag name, or nil.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
