package policyref

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/wikilens/policyref/core/pipeline"
	"github.com/wikilens/policyref/database"
	"github.com/wikilens/policyref/helper"
	"github.com/wikilens/policyref/model"
	loadSql "github.com/wikilens/policyref/sql"
)

// Analyzer provides a unified interface to the analysis pipeline and,
// when configured with an archive, to all database handlers.
type Analyzer struct {
	DB        *helper.Database
	Analyses  *database.AnalysesDBHandler
	Sentences *database.SentencesDBHandler
	Mentions  *database.MentionsDBHandler
	Pipeline  *pipeline.Pipeline
	// Logging
	log *slog.Logger
}

// New creates an in-memory Analyzer without an archive. Analyze works,
// the archive operations return an error.
func New(p *pipeline.Pipeline) *Analyzer {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return &Analyzer{
		Pipeline: p,
		log:      logger,
	}
}

// NewWithArchive creates an Analyzer backed by a PostgreSQL archive
// with all handlers initialized. embeddingDim pins the dimension of the
// sentence embedding column; it must match the pipeline's embedder.
func NewWithArchive(config *helper.DatabaseConfiguration, p *pipeline.Pipeline, embeddingDim int) (*Analyzer, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("policyref", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (analyses first, the
	// other tables reference it)
	// force=false to not reload if functions already exist
	analyses, err := database.NewAnalysesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create analyses handler", err)
	}

	sentences, err := database.NewSentencesDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create sentences handler", err)
	}

	mentions, err := database.NewMentionsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create mentions handler", err)
	}

	return &Analyzer{
		DB:        db,
		Analyses:  analyses,
		Sentences: sentences,
		Mentions:  mentions,
		Pipeline:  p,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (a *Analyzer) Close() error {
	if a.DB != nil && a.DB.Instance != nil {
		return a.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the analysis pipeline
func (a *Analyzer) SetPipeline(p *pipeline.Pipeline) {
	a.Pipeline = p
}

// Analyze runs the pipeline on one discussion. htmlStr is the rendered
// discussion HTML; plainText is optional and derived from the HTML when
// empty.
func (a *Analyzer) Analyze(ctx context.Context, htmlStr string, plainText string) (*model.AnalysisResult, error) {
	if a.Pipeline == nil {
		return nil, helper.NewError("analyze", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	return a.Pipeline.Analyze(ctx, htmlStr, plainText)
}

// ArchiveAnalysis stores an analysis result: the analysis record, its
// sentences (with embeddings when the pipeline has an embedder) and its
// grounded mentions. Returns the stored analysis record.
func (a *Analyzer) ArchiveAnalysis(result *model.AnalysisResult) (*model.Analysis, error) {
	if a.Analyses == nil {
		return nil, helper.NewError("archive analysis", fmt.Errorf("analyzer has no archive, use NewWithArchive"))
	}

	analysis := &model.Analysis{
		Title:     result.Title,
		SourceURL: result.SourceURL,
		Metadata: model.Metadata{
			"fell_back": result.FellBack,
			"sentences": len(result.Sentences),
			"mentions":  len(result.Mentions()),
		},
	}
	if err := a.Analyses.InsertAnalysis(analysis); err != nil {
		return nil, helper.NewError("insert analysis", err)
	}

	a.log.Info("Inserted analysis", slog.String("analysis_id", analysis.RID.String()), slog.String("title", analysis.Title))

	for _, span := range result.Sentences {
		sentence := &model.Sentence{
			AnalysisID:    analysis.ID,
			SentenceIndex: span.Index,
			Content:       span.Text,
			Metadata:      model.Metadata{"start": span.Start, "end": span.End},
		}
		if a.Pipeline != nil && a.Pipeline.Embedder != nil {
			embedding, err := a.Pipeline.Embedder(span.Text)
			if err != nil {
				return nil, helper.NewError(fmt.Sprintf("embed sentence %d", span.Index), err)
			}
			sentence.Embedding = embedding
		}
		if err := a.Sentences.InsertSentence(sentence); err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert sentence %d", span.Index), err)
		}
	}

	for _, m := range result.Mentions() {
		mention := m
		mention.AnalysisID = analysis.ID
		if err := a.Mentions.InsertMention(&mention); err != nil {
			return nil, helper.NewError(fmt.Sprintf("insert mention %s", mention.Shortcut), err)
		}
	}

	a.log.Info("Archived analysis",
		slog.String("analysis_id", analysis.RID.String()),
		slog.Int("num_sentences", len(result.Sentences)),
		slog.Int("num_mentions", len(result.Mentions())),
	)

	return analysis, nil
}

// ArchivedAnalysis loads an archived analysis with its sentences and
// mentions.
func (a *Analyzer) ArchivedAnalysis(rid uuid.UUID) (*model.Analysis, []*model.Sentence, []*model.Mention, error) {
	if a.Analyses == nil {
		return nil, nil, nil, helper.NewError("load analysis", fmt.Errorf("analyzer has no archive, use NewWithArchive"))
	}

	analysis, err := a.Analyses.SelectAnalysis(rid)
	if err != nil {
		return nil, nil, nil, helper.NewError("select analysis", err)
	}

	sentences, err := a.Sentences.SelectSentencesByAnalysis(rid)
	if err != nil {
		return nil, nil, nil, helper.NewError("select sentences", err)
	}

	mentions, err := a.Mentions.SelectMentionsByAnalysis(rid)
	if err != nil {
		return nil, nil, nil, helper.NewError("select mentions", err)
	}

	return analysis, sentences, mentions, nil
}

// DeleteAnalysis removes an archived analysis. Sentences and mentions
// are removed by the cascade.
func (a *Analyzer) DeleteAnalysis(rid uuid.UUID) error {
	if a.Analyses == nil {
		return helper.NewError("delete analysis", fmt.Errorf("analyzer has no archive, use NewWithArchive"))
	}
	return a.Analyses.DeleteAnalysis(rid)
}

// SearchSimilarSentences embeds the query with the pipeline's embedder
// and performs vector similarity search over archived sentences.
// If analysisRIDs is nil or empty, searches across all analyses.
func (a *Analyzer) SearchSimilarSentences(query string, limit int, threshold float64, analysisRIDs []uuid.UUID) ([]*model.Sentence, error) {
	if a.Sentences == nil {
		return nil, helper.NewError("similarity search", fmt.Errorf("analyzer has no archive, use NewWithArchive"))
	}
	if a.Pipeline == nil || a.Pipeline.Embedder == nil {
		return nil, helper.NewError("similarity search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	embedding, err := a.Pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return a.Sentences.SelectSentencesBySimilarity(embedding, limit, threshold, analysisRIDs)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (a *Analyzer) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	if a.Sentences == nil {
		return helper.NewError("change index type", fmt.Errorf("analyzer has no archive, use NewWithArchive"))
	}
	return a.Sentences.ChangeIndexType(ctx, indexType, params)
}
