// Package server exposes the analysis pipeline over HTTP. The caller
// supplies the already-fetched discussion HTML (and optionally its
// plain text); fetching pages is out of scope here.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wikilens/policyref/model"
)

// analyzeTimeout bounds one analysis request, including any model
// calls the extractor makes.
const analyzeTimeout = 2 * time.Minute

// Analyzer runs one discussion analysis. *policyref.Analyzer satisfies
// it; tests plug in stubs.
type Analyzer interface {
	Analyze(ctx context.Context, htmlStr string, plainText string) (*model.AnalysisResult, error)
}

// Handler holds the HTTP handlers for the analysis API.
type Handler struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewHandler creates a new Handler backed by the given Analyzer.
func NewHandler(analyzer Analyzer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{analyzer: analyzer, logger: logger}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
}

// analyzeRequest is the analysis request body. HTML is required; Text
// is derived from the HTML when absent.
type analyzeRequest struct {
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	HTML  string `json:"html"`
	Text  string `json:"text,omitempty"`
}

// categoryPayload is the per-category slice of the response.
type categoryPayload struct {
	State    model.CategoryState `json:"state"`
	Message  string              `json:"message,omitempty"`
	Mentions []model.Mention     `json:"mentions"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.HTML == "" {
		writeError(w, http.StatusBadRequest, "discussion html is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analyzeTimeout)
	defer cancel()

	start := time.Now()
	result, err := h.analyzer.Analyze(ctx, req.HTML, req.Text)
	if err != nil {
		h.logger.Error("analysis failed", "url", req.URL, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	result.SourceURL = req.URL
	result.Title = req.Title

	h.logger.Info("analysis complete",
		"rid", result.RID,
		"url", req.URL,
		"sentences", len(result.Sentences),
		"mentions", len(result.Mentions()),
		"fell_back", result.FellBack,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	response := map[string]interface{}{
		"rid":             result.RID,
		"discussion_html": result.AnnotatedHTML,
		"fell_back":       result.FellBack,
	}
	for _, category := range model.AllCategories {
		payload := categoryPayload{Mentions: []model.Mention{}}
		if cr := result.CategoryResult(category); cr != nil {
			payload.State = cr.State
			payload.Message = cr.Message
			payload.Mentions = append(payload.Mentions, cr.Mentions...)
		}
		response[category.Plural()] = payload
	}

	writeJSON(w, http.StatusOK, response)
}
