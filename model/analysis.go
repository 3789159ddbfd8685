package model

import (
	"time"

	"github.com/google/uuid"
)

// Analysis represents an archived discussion analysis record.
type Analysis struct {
	ID        int64     `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Title     string    `json:"title"`
	SourceURL string    `json:"source_url,omitempty"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryResult is the grounded outcome for one category. Message is
// only set for the two empty states so a caller can render the correct
// "none found" text without re-deriving it.
type CategoryResult struct {
	Category Category      `json:"category"`
	State    CategoryState `json:"state"`
	Mentions []Mention     `json:"mentions"`
	Message  string        `json:"message,omitempty"`
}

// AnalysisResult is the full outcome of analyzing one discussion.
type AnalysisResult struct {
	RID           uuid.UUID        `json:"rid"`
	Title         string           `json:"title,omitempty"`
	SourceURL     string           `json:"source_url,omitempty"`
	PlainText     string           `json:"-"`
	AnnotatedHTML string           `json:"discussion_html"`
	Sentences     []SentenceSpan   `json:"sentences"`
	Categories    []CategoryResult `json:"categories"`
	Binding       HighlightBinding `json:"binding"`
	// FellBack reports that the primary extractor failed and the
	// fallback extractor produced the candidates instead.
	FellBack  bool      `json:"fell_back,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryResult returns the result for the given category, or nil.
func (r *AnalysisResult) CategoryResult(category Category) *CategoryResult {
	for i := range r.Categories {
		if r.Categories[i].Category == category {
			return &r.Categories[i]
		}
	}
	return nil
}

// Mentions returns all grounded mentions across categories, in category
// then highlight-id order.
func (r *AnalysisResult) Mentions() []Mention {
	var mentions []Mention
	for _, cr := range r.Categories {
		mentions = append(mentions, cr.Mentions...)
	}
	return mentions
}

// FirstContext returns the text of the first sentence containing the
// mention, truncated to maxLen bytes, or "" when the mention is not
// associated with any sentence.
func (r *AnalysisResult) FirstContext(m Mention, maxLen int) string {
	if len(m.SentenceIDs) == 0 {
		return ""
	}
	idx := m.SentenceIDs[0]
	if idx < 0 || idx >= len(r.Sentences) {
		return ""
	}
	text := r.Sentences[idx].Text
	if maxLen > 0 && len(text) > maxLen {
		text = text[:maxLen]
	}
	return text
}
