package htmlmap

import (
	"sort"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Range is one absolute offset range in the flattened text to be
// wrapped in a marker span carrying ID and Class.
type Range struct {
	Start int
	End   int
	ID    string
	Class string
}

// WrapRanges rewrites the tree so every text-node substring overlapped
// by a range is wrapped in <span id=... class=...>. A range spanning
// multiple text nodes produces one wrapper per node, all carrying the
// same id. Text nodes not overlapped by any range stay untouched.
//
// Ranges are sorted, clamped to the flattened-text bounds and any range
// overlapping its predecessor is dropped: a bad range loses its
// annotation instead of corrupting the output.
func WrapRanges(root *html.Node, ranges []Range) {
	segments := BuildSegments(root)
	if len(segments) == 0 || len(ranges) == 0 {
		return
	}
	total := segments[len(segments)-1].End

	ranges = sanitizeRanges(ranges, total)
	if len(ranges) == 0 {
		return
	}

	for _, seg := range segments {
		overlaps := overlapping(ranges, seg)
		if len(overlaps) > 0 {
			wrapTextNode(seg, overlaps)
		}
	}
}

// sanitizeRanges sorts ranges by start, clamps them to [0,total) and
// drops empty or overlapping ranges.
func sanitizeRanges(ranges []Range, total int) []Range {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var clean []Range
	prevEnd := 0
	for _, r := range sorted {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > total {
			r.End = total
		}
		if r.End <= r.Start || r.Start < prevEnd {
			continue
		}
		clean = append(clean, r)
		prevEnd = r.End
	}
	return clean
}

// overlapping returns the ranges intersecting the segment, in order.
func overlapping(ranges []Range, seg TextSegment) []Range {
	var out []Range
	for _, r := range ranges {
		if r.Start < seg.End && r.End > seg.Start {
			out = append(out, r)
		}
		if r.Start >= seg.End {
			break
		}
	}
	return out
}

// wrapTextNode replaces a single text node with the ordered sequence
// [text?, span, text?, span, ..., text?] produced by cutting the node
// at the local projections of every overlapping range boundary.
func wrapTextNode(seg TextSegment, overlaps []Range) {
	parent := seg.Node.Parent
	if parent == nil {
		return
	}

	data := seg.Node.Data
	var replacement []*html.Node
	pos := 0

	for _, r := range overlaps {
		localStart := r.Start - seg.Start
		if localStart < 0 {
			localStart = 0
		}
		localEnd := r.End - seg.Start
		if localEnd > len(data) {
			localEnd = len(data)
		}

		if localStart > pos {
			replacement = append(replacement, textNode(data[pos:localStart]))
		}

		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr: []html.Attribute{
				{Key: "id", Val: r.ID},
				{Key: "class", Val: r.Class},
			},
		}
		span.AppendChild(textNode(data[localStart:localEnd]))
		replacement = append(replacement, span)

		pos = localEnd
	}

	if pos < len(data) {
		replacement = append(replacement, textNode(data[pos:]))
	}

	for _, n := range replacement {
		parent.InsertBefore(n, seg.Node)
	}
	parent.RemoveChild(seg.Node)
}

func textNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}
