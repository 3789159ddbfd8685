package htmlmap

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikilens/policyref/core/segment"
	"github.com/wikilens/policyref/model"
)

func TestAnnotateSentences(t *testing.T) {
	segmenter := segment.DefaultSegmenter()

	t.Run("Each sentence gets a sent-N span", func(t *testing.T) {
		htmlStr := `<p>First sentence. Second sentence.</p>`

		out, spans, err := AnnotateSentences(htmlStr, segmenter)

		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Contains(t, out, `id="sent-0"`)
		assert.Contains(t, out, `id="sent-1"`)
		assert.Contains(t, out, `class="discussion-sentence"`)
	})

	t.Run("Sentence crossing inline markup keeps one id", func(t *testing.T) {
		htmlStr := `<p>This has <i>emphasis</i> inside. Plain one.</p>`

		out, spans, err := AnnotateSentences(htmlStr, segmenter)

		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Equal(t, 1, strings.Count(out, `id="sent-1"`))
		assert.Equal(t, 3, strings.Count(out, `id="sent-0"`),
			"Expected the first sentence to be wrapped in three fragments around the <i> element")
	})

	t.Run("Span texts match the flattened document", func(t *testing.T) {
		htmlStr := `<p>Alpha beta. Gamma delta.</p>`

		_, spans, err := AnnotateSentences(htmlStr, segmenter)

		require.NoError(t, err)
		require.Len(t, spans, 2)
		assert.Equal(t, "Alpha beta.", spans[0].Text)
		assert.Equal(t, "Gamma delta.", spans[1].Text)
	})

	t.Run("No text returns input unchanged", func(t *testing.T) {
		htmlStr := `<hr/>`

		out, spans, err := AnnotateSentences(htmlStr, segmenter)

		require.NoError(t, err)
		assert.Empty(t, spans)
		assert.Equal(t, htmlStr, out)
	})

	t.Run("Empty input returns empty output", func(t *testing.T) {
		out, spans, err := AnnotateSentences("", segmenter)

		require.NoError(t, err)
		assert.Empty(t, spans)
		assert.Equal(t, "", out)
	})
}

func TestHighlightMentions(t *testing.T) {
	segmenter := segment.DefaultSegmenter()

	newBinding := func(shortcuts ...string) model.HighlightBinding {
		binding := model.NewHighlightBinding()
		for i, s := range shortcuts {
			binding.IDByShortcut[s] = i
		}
		return binding
	}

	t.Run("First occurrence only is highlighted", func(t *testing.T) {
		htmlStr := `<p>WP:NPOV first. WP:NPOV again.</p>`

		out, err := HighlightMentions(htmlStr, newBinding("WP:NPOV"))

		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(out, `id="highlight-0"`))
		assert.Contains(t, out, `<span id="highlight-0" class="policy-mention">WP:NPOV</span> first. WP:NPOV again.`)
	})

	t.Run("Case-insensitive occurrence is found", func(t *testing.T) {
		htmlStr := `<p>See wp:npov for details.</p>`

		out, err := HighlightMentions(htmlStr, newBinding("WP:NPOV"))

		require.NoError(t, err)
		assert.Contains(t, out, `<span id="highlight-0" class="policy-mention">wp:npov</span>`,
			"Expected the original casing to be preserved inside the wrapper")
	})

	t.Run("Highlighting after sentence annotation does not double-wrap", func(t *testing.T) {
		htmlStr := `<p>Editors disagree about WP:NPOV here. More text.</p>`

		annotated, spans, err := AnnotateSentences(htmlStr, segmenter)
		require.NoError(t, err)
		require.Len(t, spans, 2)

		out, err := HighlightMentions(annotated, newBinding("WP:NPOV"))
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(out, `id="highlight-0"`))
		assert.Contains(t, out, `id="sent-0"`)
		assert.Contains(t, out, `id="sent-1"`)

		// The flattened text must survive both rewrites untouched.
		flat, err := FlattenString(out)
		require.NoError(t, err)
		assert.Equal(t, "Editors disagree about WP:NPOV here. More text.", flat)
	})

	t.Run("Shortcut absent from document adds nothing", func(t *testing.T) {
		htmlStr := `<p>Nothing relevant here.</p>`

		out, err := HighlightMentions(htmlStr, newBinding("WP:ZZZTEST"))

		require.NoError(t, err)
		assert.Equal(t, htmlStr, out)
	})

	t.Run("Empty binding is a no-op", func(t *testing.T) {
		htmlStr := `<p>text</p>`

		out, err := HighlightMentions(htmlStr, model.NewHighlightBinding())

		require.NoError(t, err)
		assert.Equal(t, htmlStr, out)
	})
}
