package htmlmap

import (
	"fmt"

	"github.com/wikilens/policyref/model"
)

const (
	// SentenceIDPrefix prefixes the id of every sentence wrapper span.
	SentenceIDPrefix = "sent-"
	// HighlightIDPrefix prefixes the id of every mention highlight span.
	HighlightIDPrefix = "highlight-"

	sentenceClass  = "discussion-sentence"
	highlightClass = "policy-mention"
)

// AnnotateSentences wraps every detected sentence of the fragment in a
// span with id "sent-<index>". It returns the rewritten HTML and the
// sentence spans computed from the fragment's own flattened text, so
// span indices always line up with the emitted ids. A fragment with no
// text or no sentences is returned unchanged.
func AnnotateSentences(htmlStr string, segmenter func(string) []model.SentenceSpan) (string, []model.SentenceSpan, error) {
	container, err := ParseFragment(htmlStr)
	if err != nil {
		return htmlStr, nil, err
	}

	flat := Flatten(container)
	spans := segmenter(flat)
	if len(spans) == 0 {
		return htmlStr, nil, nil
	}

	ranges := make([]Range, 0, len(spans))
	for _, span := range spans {
		ranges = append(ranges, Range{
			Start: span.Start,
			End:   span.End,
			ID:    fmt.Sprintf("%s%d", SentenceIDPrefix, span.Index),
			Class: sentenceClass,
		})
	}

	WrapRanges(container, ranges)

	rendered, err := RenderFragment(container)
	if err != nil {
		return htmlStr, spans, err
	}
	return rendered, spans, nil
}

// HighlightMentions wraps the first in-document occurrence of every
// grounded shortcut in a span with id "highlight-<id>". Offsets are
// computed against a fresh flatten of the given HTML; because sentence
// wrapping adds markup but no text, the same offsets remain valid on an
// already sentence-annotated fragment and nothing gets double-wrapped.
func HighlightMentions(htmlStr string, binding model.HighlightBinding) (string, error) {
	if len(binding.IDByShortcut) == 0 {
		return htmlStr, nil
	}

	container, err := ParseFragment(htmlStr)
	if err != nil {
		return htmlStr, err
	}
	flat := Flatten(container)

	var ranges []Range
	for _, shortcut := range binding.Shortcuts() {
		pos := IndexFold(flat, shortcut)
		if pos < 0 {
			continue
		}
		ranges = append(ranges, Range{
			Start: pos,
			End:   pos + len(shortcut),
			ID:    fmt.Sprintf("%s%d", HighlightIDPrefix, binding.IDByShortcut[shortcut]),
			Class: highlightClass,
		})
	}
	if len(ranges) == 0 {
		return htmlStr, nil
	}

	WrapRanges(container, ranges)

	return RenderFragment(container)
}

// IndexFold returns the byte index of the first ASCII-case-insensitive
// occurrence of substr in s, or -1. Folding is byte-wise so offsets in
// the folded string are valid in the original.
func IndexFold(s, substr string) int {
	if len(substr) == 0 || len(substr) > len(s) {
		return -1
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if equalFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	for i := 0; i < len(a); i++ {
		ca, cb := lowerByte(a[i]), lowerByte(b[i])
		if ca != cb {
			return false
		}
	}
	return true
}

func lowerByte(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
