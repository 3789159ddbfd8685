package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSegmenter(t *testing.T) {
	segmenter := DefaultSegmenter()

	t.Run("Multiple sentences with terminal punctuation", func(t *testing.T) {
		text := "This is sentence one. This is sentence two! Is this sentence three?"

		spans := segmenter(text)

		require.Len(t, spans, 3, "Expected three sentence spans")
		assert.Equal(t, "This is sentence one.", spans[0].Text)
		assert.Equal(t, "This is sentence two!", spans[1].Text)
		assert.Equal(t, "Is this sentence three?", spans[2].Text)
	})

	t.Run("Offsets point into the original text", func(t *testing.T) {
		text := "First one. Second one."

		spans := segmenter(text)

		require.Len(t, spans, 2)
		for _, span := range spans {
			assert.Equal(t, text[span.Start:span.End], span.Text,
				"Expected span text to equal the substring at its offsets")
		}
		assert.Equal(t, 0, spans[0].Start)
		assert.Equal(t, 10, spans[0].End)
		assert.Equal(t, 11, spans[1].Start)
		assert.Equal(t, 22, spans[1].End)
	})

	t.Run("Paragraph break without punctuation", func(t *testing.T) {
		text := "First paragraph without terminator\n\nSecond paragraph"

		spans := segmenter(text)

		require.Len(t, spans, 2)
		assert.Equal(t, "First paragraph without terminator", spans[0].Text)
		assert.Equal(t, "Second paragraph", spans[1].Text)
	})

	t.Run("Windows style paragraph break", func(t *testing.T) {
		text := "First paragraph\r\n\r\nSecond paragraph."

		spans := segmenter(text)

		require.Len(t, spans, 2)
		assert.Equal(t, "First paragraph", spans[0].Text)
		assert.Equal(t, "Second paragraph.", spans[1].Text)
	})

	t.Run("Single newline is not a boundary", func(t *testing.T) {
		text := "A line\nthat continues."

		spans := segmenter(text)

		require.Len(t, spans, 1)
		assert.Equal(t, "A line\nthat continues.", spans[0].Text)
	})

	t.Run("Period without following whitespace is not a boundary", func(t *testing.T) {
		text := "See WP:V.1 for details. Second sentence."

		spans := segmenter(text)

		require.Len(t, spans, 2)
		assert.Equal(t, "See WP:V.1 for details.", spans[0].Text)
	})

	t.Run("No boundary yields a single span", func(t *testing.T) {
		text := "no terminal punctuation at all"

		spans := segmenter(text)

		require.Len(t, spans, 1)
		assert.Equal(t, text, spans[0].Text)
		assert.Equal(t, 0, spans[0].Start)
		assert.Equal(t, len(text), spans[0].End)
	})

	t.Run("Empty text yields no spans", func(t *testing.T) {
		spans := segmenter("")

		assert.Empty(t, spans)
	})

	t.Run("Whitespace-only text yields no spans", func(t *testing.T) {
		spans := segmenter("  \n\n \t ")

		assert.Empty(t, spans)
	})

	t.Run("Trimming shrinks offsets instead of rewriting text", func(t *testing.T) {
		text := "  Padded sentence.  Next one. "

		spans := segmenter(text)

		require.Len(t, spans, 2)
		assert.Equal(t, "Padded sentence.", spans[0].Text)
		assert.Equal(t, 2, spans[0].Start, "Expected start to skip the leading spaces")
		assert.Equal(t, text[spans[0].Start:spans[0].End], spans[0].Text)
		assert.Equal(t, text[spans[1].Start:spans[1].End], spans[1].Text)
	})

	t.Run("Spans are sorted and non-overlapping", func(t *testing.T) {
		text := "One. Two. Three.\n\nFour without end"

		spans := segmenter(text)

		require.Len(t, spans, 4)
		prevEnd := 0
		for i, span := range spans {
			assert.Equal(t, i, span.Index)
			assert.Greater(t, span.End, span.Start, "Expected end > start for every span")
			assert.GreaterOrEqual(t, span.Start, prevEnd, "Expected spans not to overlap")
			prevEnd = span.End
		}
	})

	t.Run("Indices are dense after dropping empty spans", func(t *testing.T) {
		text := "One.   \n\n  \n\n  Two."

		spans := segmenter(text)

		require.Len(t, spans, 2)
		assert.Equal(t, 0, spans[0].Index)
		assert.Equal(t, 1, spans[1].Index)
	})
}
