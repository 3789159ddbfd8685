package model

import (
	"time"

	"github.com/google/uuid"
)

// SentenceSpan is one detected sentence in the flattened document text.
// Start and End are byte offsets into the original text; Text is exactly
// text[Start:End] after whitespace trimming has been folded into the
// offsets themselves.
type SentenceSpan struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Sentence represents an archived sentence row.
type Sentence struct {
	ID            int       `json:"id"`
	AnalysisID    int64     `json:"analysis_id"`
	AnalysisRID   uuid.UUID `json:"analysis_rid"`
	SentenceIndex int       `json:"sentence_index"`
	Content       string    `json:"content"`
	Embedding     []float32 `json:"embedding,omitempty"`
	Metadata      Metadata  `json:"metadata,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}
