package model

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a raw extracted mention before grounding. Shortcut is the
// canonical short code ("WP:NPOV"); Quote and Href are optional.
type Candidate struct {
	Category Category `json:"category"`
	Shortcut string   `json:"shortcut"`
	Quote    string   `json:"quote,omitempty"`
	Href     string   `json:"href,omitempty"`
}

// Mention is a grounded mention: a candidate that was verified to occur
// in the discussion text, annotated with its highlight id and the
// indices of every sentence containing it.
type Mention struct {
	Category    Category `json:"category"`
	Shortcut    string   `json:"shortcut"`
	Quote       string   `json:"quote,omitempty"`
	Href        string   `json:"href,omitempty"`
	HighlightID int      `json:"highlight_id"`
	SentenceIDs []int    `json:"sentence_ids"`
	// Database fields, unset for in-memory results
	ID          int       `json:"id,omitempty"`
	AnalysisID  int64     `json:"analysis_id,omitempty"`
	AnalysisRID uuid.UUID `json:"analysis_rid,omitempty"`
	Metadata    Metadata  `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// HighlightBinding is the bidirectional index between grounded shortcuts
// and highlight ids. Ids are dense integers assigned in lexicographic
// shortcut order, so identical input always yields identical ids.
type HighlightBinding struct {
	IDByShortcut  map[string]int `json:"id_by_shortcut"`
	SentencesByID map[int][]int  `json:"sentences_by_id"`
}

// NewHighlightBinding returns an empty binding.
func NewHighlightBinding() HighlightBinding {
	return HighlightBinding{
		IDByShortcut:  make(map[string]int),
		SentencesByID: make(map[int][]int),
	}
}

// HighlightID returns the id assigned to shortcut, or -1 if the shortcut
// was not grounded.
func (b HighlightBinding) HighlightID(shortcut string) int {
	if id, ok := b.IDByShortcut[shortcut]; ok {
		return id
	}
	return -1
}

// Shortcuts returns the grounded shortcuts ordered by highlight id.
func (b HighlightBinding) Shortcuts() []string {
	shortcuts := make([]string, len(b.IDByShortcut))
	for s, id := range b.IDByShortcut {
		shortcuts[id] = s
	}
	return shortcuts
}
