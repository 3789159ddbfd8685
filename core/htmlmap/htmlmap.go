// Package htmlmap aligns flattened document text with the HTML tree it
// came from. It builds a segment map from flattened-text offsets to the
// text nodes owning them, and rewrites the tree by wrapping offset
// ranges in marker spans without disturbing any other markup.
package htmlmap

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextSegment maps one text node to its [Start,End) range in the
// flattened document text. Segments are contiguous, non-overlapping and
// ordered: concatenating their node contents reproduces the flattened
// text exactly.
type TextSegment struct {
	Node  *html.Node
	Start int
	End   int
}

// ParseFragment parses an HTML fragment leniently into a detached body
// container node. Malformed input never fails; the tree builder always
// produces some tree.
func ParseFragment(htmlStr string) (*html.Node, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(htmlStr), container)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// RenderFragment renders the children of a container node back to an
// HTML string. Text content is escaped exactly once by the renderer.
func RenderFragment(container *html.Node) (string, error) {
	var sb strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// BuildSegments walks the tree in document order and returns one
// TextSegment per non-empty text node. Element, comment and doctype
// nodes are skipped but left in place. Segment text is the raw node
// data, already entity-decoded by the parser; no re-encoding happens
// here.
func BuildSegments(root *html.Node) []TextSegment {
	var segments []TextSegment
	offset := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if len(n.Data) > 0 {
				segments = append(segments, TextSegment{
					Node:  n,
					Start: offset,
					End:   offset + len(n.Data),
				})
				offset += len(n.Data)
			}
			return
		}
		if n.Type == html.CommentNode || n.Type == html.DoctypeNode {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return segments
}

// Flatten returns the full flattened text of the tree, the
// concatenation of all text segments in document order.
func Flatten(root *html.Node) string {
	var sb strings.Builder
	for _, seg := range BuildSegments(root) {
		sb.WriteString(seg.Node.Data)
	}
	return sb.String()
}

// FlattenString parses an HTML fragment and returns its flattened text.
func FlattenString(htmlStr string) (string, error) {
	container, err := ParseFragment(htmlStr)
	if err != nil {
		return "", err
	}
	return Flatten(container), nil
}
