package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	t.Run("Short text stays in one chunk", func(t *testing.T) {
		text := "A short discussion about WP:NPOV."

		chunks := chunkText(text, 3000, 300)

		require.Len(t, chunks, 1)
		assert.Equal(t, text, chunks[0])
	})

	t.Run("Long text is split into multiple chunks", func(t *testing.T) {
		text := strings.Repeat("This sentence fills the discussion with words. ", 200)

		chunks := chunkText(text, 3000, 300)

		assert.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 3000)
			assert.NotEmpty(t, chunk)
		}
	})

	t.Run("Chunks break at sentence boundaries", func(t *testing.T) {
		text := strings.Repeat("One more remark was added to the thread. ", 150)

		chunks := chunkText(text, 3000, 300)

		require.Greater(t, len(chunks), 1)
		for i, chunk := range chunks[:len(chunks)-1] {
			assert.True(t, strings.HasSuffix(chunk, "."),
				"Expected chunk %d to end at a sentence boundary, got %q", i, chunk[len(chunk)-20:])
		}
	})

	t.Run("Consecutive chunks overlap", func(t *testing.T) {
		text := strings.Repeat("Another contribution to the discussion follows here. ", 150)

		chunks := chunkText(text, 3000, 300)

		require.Greater(t, len(chunks), 1)
		for i := 1; i < len(chunks); i++ {
			head := chunks[i][:100]
			assert.Contains(t, chunks[i-1], head,
				"Expected chunk %d to start inside the tail of chunk %d", i, i-1)
		}
	})

	t.Run("Whole text is covered", func(t *testing.T) {
		text := strings.Repeat("Coverage of every byte matters for grounding. ", 150)

		chunks := chunkText(text, 3000, 300)

		var rebuilt strings.Builder
		for _, chunk := range chunks {
			rebuilt.WriteString(chunk)
		}
		// With overlap the concatenation is longer than the input, never shorter.
		assert.GreaterOrEqual(t, rebuilt.Len(), len(strings.TrimSpace(text)))
		assert.True(t, strings.HasSuffix(strings.TrimSpace(text), chunks[len(chunks)-1][len(chunks[len(chunks)-1])-50:]))
	})

	t.Run("Paragraph boundary is preferred over hard cut", func(t *testing.T) {
		para := strings.Repeat("word ", 500)
		text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)

		chunks := chunkText(text, 2600, 300)

		require.Greater(t, len(chunks), 1)
		assert.True(t, strings.HasSuffix(chunks[0], "word"),
			"Expected the first chunk to stop at the paragraph break")
	})
}
