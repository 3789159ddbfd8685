package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wikilens/policyref/core/ground"
	"github.com/wikilens/policyref/core/htmlmap"
	"github.com/wikilens/policyref/core/segment"
	"github.com/wikilens/policyref/helper"
	"github.com/wikilens/policyref/model"
)

// ExtractFunc is a function that produces mention candidates for a
// discussion. It receives both the raw HTML and the flattened plain
// text; extractors may use either or both.
type ExtractFunc func(ctx context.Context, htmlStr string, plainText string) ([]model.Candidate, error)

// EmbedFunc is a function that generates an embedding vector for text.
type EmbedFunc func(text string) ([]float32, error)

// Pipeline combines segmentation, candidate extraction and grounding
// into a single analysis pass over a discussion.
type Pipeline struct {
	Segmenter segment.SegmentFunc
	Extractor ExtractFunc
	Fallback  ExtractFunc // Optional - used when Extractor fails
	Embedder  EmbedFunc   // Optional - used by the archive layer
	// MinSuffixLen overrides the grounding suffix threshold; zero keeps
	// the default.
	MinSuffixLen int
}

// NewPipeline creates a new analysis pipeline with the default sentence
// segmenter.
func NewPipeline(extractor ExtractFunc) *Pipeline {
	return &Pipeline{
		Segmenter: segment.DefaultSegmenter(),
		Extractor: extractor,
	}
}

// SetFallback sets the extractor used when the primary extractor
// returns an error.
func (p *Pipeline) SetFallback(extractor ExtractFunc) {
	p.Fallback = extractor
}

// SetEmbedder sets the embedding function used when archiving sentences.
func (p *Pipeline) SetEmbedder(embedder EmbedFunc) {
	p.Embedder = embedder
}

// Analyze runs the full pipeline over one discussion: extract
// candidates, wrap every sentence in an id-carrying span, ground the
// candidates against the plain text and highlight the survivors in the
// annotated HTML. When plainText is empty it is derived by flattening
// the HTML, so both always describe the same text stream.
func (p *Pipeline) Analyze(ctx context.Context, htmlStr string, plainText string) (*model.AnalysisResult, error) {
	if p.Extractor == nil && p.Fallback == nil {
		return nil, fmt.Errorf("pipeline has no extractor configured")
	}

	if plainText == "" {
		flat, err := htmlmap.FlattenString(htmlStr)
		if err != nil {
			return nil, helper.NewError("flattening discussion html", err)
		}
		plainText = flat
	}

	candidates, fellBack, err := p.extract(ctx, htmlStr, plainText)
	if err != nil {
		return nil, err
	}

	annotated, spans, err := htmlmap.AnnotateSentences(htmlStr, p.segmenter())
	if err != nil {
		return nil, helper.NewError("annotating sentences", err)
	}

	grounded := ground.Ground(candidates, plainText, spans, ground.Options{MinSuffixLen: p.MinSuffixLen})

	highlighted, err := htmlmap.HighlightMentions(annotated, grounded.Binding)
	if err != nil {
		return nil, helper.NewError("highlighting mentions", err)
	}

	return &model.AnalysisResult{
		RID:           uuid.New(),
		PlainText:     plainText,
		AnnotatedHTML: highlighted,
		Sentences:     spans,
		Categories:    grounded.Categories,
		Binding:       grounded.Binding,
		FellBack:      fellBack,
		CreatedAt:     time.Now(),
	}, nil
}

func (p *Pipeline) segmenter() segment.SegmentFunc {
	if p.Segmenter != nil {
		return p.Segmenter
	}
	return segment.DefaultSegmenter()
}

// extract runs the primary extractor and degrades to the fallback on
// error. The bool reports whether the fallback produced the candidates
// in place of a failed primary.
func (p *Pipeline) extract(ctx context.Context, htmlStr string, plainText string) ([]model.Candidate, bool, error) {
	if p.Extractor == nil {
		candidates, err := p.Fallback(ctx, htmlStr, plainText)
		if err != nil {
			return nil, false, helper.NewError("extracting candidates", err)
		}
		return candidates, false, nil
	}

	candidates, err := p.Extractor(ctx, htmlStr, plainText)
	if err == nil {
		return candidates, false, nil
	}
	if p.Fallback == nil {
		return nil, false, helper.NewError("extracting candidates", err)
	}

	candidates, fallbackErr := p.Fallback(ctx, htmlStr, plainText)
	if fallbackErr != nil {
		return nil, false, helper.NewError("extracting candidates with fallback", fallbackErr)
	}
	return candidates, true, nil
}
