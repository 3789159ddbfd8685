package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikilens/policyref/core/pipeline"
	"github.com/wikilens/policyref/model"
)

type stubAnalyzer struct {
	result *model.AnalysisResult
	err    error
	html   string
	text   string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, htmlStr string, plainText string) (*model.AnalysisResult, error) {
	s.html = htmlStr
	s.text = plainText
	return s.result, s.err
}

func newTestServer(t *testing.T, analyzer Analyzer) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(analyzer, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandleAnalyze(t *testing.T) {
	t.Run("Successful analysis returns category payloads", func(t *testing.T) {
		stub := &stubAnalyzer{
			result: &model.AnalysisResult{
				AnnotatedHTML: `<p><span id="sent-0" class="discussion-sentence">WP:NPOV here.</span></p>`,
				Sentences:     []model.SentenceSpan{{Index: 0, End: 13, Text: "WP:NPOV here."}},
				Categories: []model.CategoryResult{
					{
						Category: model.CategoryPolicy,
						State:    model.CategoryStateFound,
						Mentions: []model.Mention{{Category: model.CategoryPolicy, Shortcut: "WP:NPOV", SentenceIDs: []int{0}}},
					},
					{Category: model.CategoryGuideline, State: model.CategoryStateNoCandidates, Message: "No guidelines explicitly mentioned in this discussion."},
					{Category: model.CategoryEssay, State: model.CategoryStateNoCandidates, Message: "No essays explicitly mentioned in this discussion."},
				},
			},
		}
		srv := newTestServer(t, stub)

		resp, body := postJSON(t, srv.URL+"/analyze", `{"html":"<p>WP:NPOV here.</p>","url":"https://en.wikipedia.org/wiki/Talk:Example"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body["discussion_html"], `id="sent-0"`)

		policies, ok := body["policies"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "found", policies["state"])
		require.Len(t, policies["mentions"], 1)

		guidelines, ok := body["guidelines"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "no_candidates", guidelines["state"])
		assert.NotEmpty(t, guidelines["message"])
		assert.NotNil(t, guidelines["mentions"], "Expected mentions to encode as an empty list, not null")
	})

	t.Run("Analyzer receives html and text from the request", func(t *testing.T) {
		stub := &stubAnalyzer{result: &model.AnalysisResult{}}
		srv := newTestServer(t, stub)

		resp, _ := postJSON(t, srv.URL+"/analyze", `{"html":"<p>x</p>","text":"x"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<p>x</p>", stub.html)
		assert.Equal(t, "x", stub.text)
	})

	t.Run("Missing html is a bad request", func(t *testing.T) {
		srv := newTestServer(t, &stubAnalyzer{})

		resp, body := postJSON(t, srv.URL+"/analyze", `{"url":"https://example.org"}`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errObj, ok := body["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errObj["message"], "html is required")
	})

	t.Run("Malformed body is a bad request", func(t *testing.T) {
		srv := newTestServer(t, &stubAnalyzer{})

		resp, _ := postJSON(t, srv.URL+"/analyze", `{not json`)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Analyzer failure is an internal error", func(t *testing.T) {
		srv := newTestServer(t, &stubAnalyzer{err: fmt.Errorf("extractor unavailable")})

		resp, body := postJSON(t, srv.URL+"/analyze", `{"html":"<p>x</p>"}`)

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		errObj, ok := body["error"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, errObj["message"], "extractor unavailable")
	})

	t.Run("GET on analyze is not allowed", func(t *testing.T) {
		srv := newTestServer(t, &stubAnalyzer{})

		resp, err := http.Get(srv.URL + "/analyze")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("End to end with the real pipeline", func(t *testing.T) {
		p := pipeline.NewPipeline(pipeline.PatternExtractor())
		srv := newTestServer(t, p)

		resp, body := postJSON(t, srv.URL+"/analyze", `{"html":"<p>Editors cite WP:NPOV and wp:rs here.</p>"}`)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body["discussion_html"], `class="policy-mention"`)

		policies := body["policies"].(map[string]interface{})
		guidelines := body["guidelines"].(map[string]interface{})
		assert.Equal(t, "found", policies["state"])
		assert.Equal(t, "found", guidelines["state"])
	})
}
