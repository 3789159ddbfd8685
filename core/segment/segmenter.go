// Package segment splits flattened document text into sentence spans.
package segment

import (
	"unicode"
	"unicode/utf8"

	"github.com/wikilens/policyref/model"
)

// SegmentFunc is a function that splits text into ordered, non-overlapping
// sentence spans. Implementations never fail: text without any boundary
// yields a single span, empty text yields no spans.
type SegmentFunc func(text string) []model.SentenceSpan

// DefaultSegmenter returns a segmenter that closes a sentence after a
// terminal punctuation mark (. ! ?) followed by whitespace, or at a
// paragraph break of two or more newlines. Span offsets always point
// into the original text; trimming surrounding whitespace shrinks the
// offsets rather than rewriting the reported text, so offset-based HTML
// rewrapping stays correct.
func DefaultSegmenter() SegmentFunc {
	return func(text string) []model.SentenceSpan {
		var spans []model.SentenceSpan

		flush := func(start, end int) {
			start, end = trimRange(text, start, end)
			if end > start {
				spans = append(spans, model.SentenceSpan{
					Index: len(spans),
					Start: start,
					End:   end,
					Text:  text[start:end],
				})
			}
		}

		start := 0
		i := 0
		for i < len(text) {
			c := text[i]
			if c == '.' || c == '!' || c == '?' {
				if i+1 >= len(text) || startsWithSpace(text[i+1:]) {
					flush(start, i+1)
					i++
					start = i
					continue
				}
				i++
				continue
			}
			if c == '\n' {
				if next, newlines := scanBlankRun(text, i); newlines >= 2 {
					flush(start, i)
					i = next
					start = i
					continue
				}
			}
			i++
		}
		flush(start, len(text))

		return spans
	}
}

// scanBlankRun advances over a run of newlines and intervening carriage
// returns starting at i, returning the position after the run and the
// number of newlines seen.
func scanBlankRun(text string, i int) (int, int) {
	newlines := 0
	for i < len(text) && (text[i] == '\n' || text[i] == '\r') {
		if text[i] == '\n' {
			newlines++
		}
		i++
	}
	return i, newlines
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

// trimRange narrows [start,end) past any leading and trailing whitespace.
func trimRange(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}
