package dom

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// NominalRowHeight approximates the rendered height of one element when the
// snapshot carries no recorded positions. Document-order rank scaled by this
// value stands in for a real layout pass.
const NominalRowHeight = 24.0

// Document is a parsed HTML snapshot of the host page. It exposes the small
// set of capabilities the extraction strategies need (query by marker, read
// text, read position) so they never touch a live browser document.
type Document struct {
	root  *html.Node
	nodes []*Node
	index map[*html.Node]*Node
}

// Node is one element in the snapshot.
type Node struct {
	el   *html.Node
	doc  *Document
	rank int
}

// Parse reads an HTML snapshot into a Document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := &Document{root: root, index: make(map[*html.Node]*Node)}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			node := &Node{el: n, doc: doc, rank: len(doc.nodes)}
			doc.nodes = append(doc.nodes, node)
			doc.index[n] = node
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc, nil
}

// ParseString parses an HTML snapshot held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// QueryAll returns the elements matched by the predicate, in document order.
func (d *Document) QueryAll(match func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Len returns the number of elements in the snapshot.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Height reports the lowest element position in the snapshot. The settle
// poller uses it as a proxy for rendered document height.
func (d *Document) Height() float64 {
	var max float64
	for _, n := range d.nodes {
		if t := n.Top(); t > max {
			max = t
		}
	}
	return max
}

// Tag returns the lowercased element name.
func (n *Node) Tag() string {
	return n.el.Data
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	for _, a := range n.el.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// HasClassContaining reports whether the class attribute contains the marker
// substring. SPA build pipelines suffix class names with hashes, so substring
// matching is deliberate.
func (n *Node) HasClassContaining(marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(n.Attr("class"), marker)
}

// Text returns the node's full text content with whitespace collapsed.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteString(" ")
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n.el)
	return strings.Join(strings.Fields(b.String()), " ")
}

// TextFields returns the trimmed text of each non-empty text chunk under the
// node, in document order. Rendered transaction rows put the payee first and
// the raw amount last.
func (n *Node) TextFields() []string {
	var fields []string
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			if t := strings.Join(strings.Fields(c.Data), " "); t != "" {
				fields = append(fields, t)
			}
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	for k := n.el.FirstChild; k != nil; k = k.NextSibling {
		walk(k)
	}
	return fields
}

// FollowingSiblings returns the element siblings after the node, in order.
func (n *Node) FollowingSiblings() []*Node {
	var out []*Node
	for s := n.el.NextSibling; s != nil; s = s.NextSibling {
		if s.Type != html.ElementNode {
			continue
		}
		if node, ok := n.doc.index[s]; ok {
			out = append(out, node)
		}
	}
	return out
}

// Descendants returns matching descendant elements, depth-first.
func (n *Node) Descendants(match func(*Node) bool) []*Node {
	var out []*Node
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			if node, ok := n.doc.index[c]; ok && match(node) {
				out = append(out, node)
			}
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	for k := n.el.FirstChild; k != nil; k = k.NextSibling {
		walk(k)
	}
	return out
}

// ContainsMarker reports whether the node or any descendant carries the
// class marker.
func (n *Node) ContainsMarker(marker string) bool {
	if n.HasClassContaining(marker) {
		return true
	}
	return len(n.Descendants(func(d *Node) bool { return d.HasClassContaining(marker) })) > 0
}

// Top returns the node's vertical position in pixels. Captures that recorded
// layout carry it in a data-y attribute or an inline top style; otherwise
// document-order rank stands in, scaled to a nominal row height. Document
// order tracks vertical order in the flow layouts this targets.
func (n *Node) Top() float64 {
	if v := n.Attr("data-y"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
			return f
		}
	}
	if style := n.Attr("style"); style != "" {
		for _, decl := range strings.Split(style, ";") {
			k, v, ok := strings.Cut(decl, ":")
			if !ok || strings.TrimSpace(k) != "top" {
				continue
			}
			v = strings.TrimSuffix(strings.TrimSpace(v), "px")
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return float64(n.rank) * NominalRowHeight
}
