package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/wikilens/policyref/helper"
	"github.com/wikilens/policyref/model"
	loadSql "github.com/wikilens/policyref/sql"
)

// SentencesDBHandlerFunctions defines the interface for Sentences database operations.
type SentencesDBHandlerFunctions interface {
	InsertSentence(sentence *model.Sentence) error
	SelectSentencesByAnalysis(analysisRID uuid.UUID) ([]*model.Sentence, error)
	SelectSentencesBySimilarity(embedding []float32, limit int, threshold float64, analysisRIDs []uuid.UUID) ([]*model.Sentence, error)
	DeleteSentencesByAnalysis(analysisRID uuid.UUID) error
}

// SentencesDBHandler handles sentence-related database operations
type SentencesDBHandler struct {
	db *helper.Database
}

// NewSentencesDBHandler creates a new sentences database handler.
// It initializes the database connection and loads sentence-related SQL functions.
// embeddingDim pins the dimension of the embedding column on first use.
// If force is true, it will reload the SQL functions even if they already exist.
func NewSentencesDBHandler(db *helper.Database, embeddingDim int, force bool) (*SentencesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	sentencesDbHandler := &SentencesDBHandler{
		db: db,
	}

	err := loadSql.LoadSentencesSql(sentencesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load sentences sql", err)
	}

	err = sentencesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized SentencesDBHandler")

	return sentencesDbHandler, nil
}

// CreateTable creates the 'sentences' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *SentencesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_sentences($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing sentences table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table sentences")

	return nil
}

// InsertSentence inserts a new sentence
func (h *SentencesDBHandler) InsertSentence(sentence *model.Sentence) error {
	var embeddingParam interface{}
	if len(sentence.Embedding) > 0 {
		embeddingParam = pq.Array(sentence.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_sentence($1, $2, $3, $4, $5)`,
		sentence.AnalysisID,
		sentence.SentenceIndex,
		sentence.Content,
		embeddingParam,
		sentence.Metadata,
	)

	err := row.Scan(
		&sentence.ID,
		&sentence.AnalysisID,
		&sentence.AnalysisRID,
		&sentence.SentenceIndex,
		&sentence.Content,
		pq.Array(&sentence.Embedding),
		&sentence.Metadata,
		&sentence.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectSentencesByAnalysis retrieves all sentences of an analysis in
// sentence-index order
func (h *SentencesDBHandler) SelectSentencesByAnalysis(analysisRID uuid.UUID) ([]*model.Sentence, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_sentences_by_analysis($1)`,
		analysisRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var sentences []*model.Sentence
	for rows.Next() {
		sentence := &model.Sentence{}
		err := rows.Scan(
			&sentence.ID,
			&sentence.AnalysisID,
			&sentence.AnalysisRID,
			&sentence.SentenceIndex,
			&sentence.Content,
			pq.Array(&sentence.Embedding),
			&sentence.Metadata,
			&sentence.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		sentences = append(sentences, sentence)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return sentences, nil
}

// SelectSentencesBySimilarity performs vector similarity search.
// If analysisRIDs is nil or empty, searches across all analyses
func (h *SentencesDBHandler) SelectSentencesBySimilarity(embedding []float32, limit int, threshold float64, analysisRIDs []uuid.UUID) ([]*model.Sentence, error) {
	embeddingVector := pgvector.NewVector(embedding)

	// Convert analysisRIDs to PostgreSQL UUID array format
	var analysisRIDsParam interface{}
	if len(analysisRIDs) > 0 {
		analysisRIDsParam = pq.Array(analysisRIDs)
	} else {
		analysisRIDsParam = nil
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_sentences_by_similarity($1, $2, $3, $4)`,
		embeddingVector,
		limit,
		threshold,
		analysisRIDsParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var sentences []*model.Sentence
	for rows.Next() {
		sentence := &model.Sentence{}
		err := rows.Scan(
			&sentence.ID,
			&sentence.AnalysisID,
			&sentence.AnalysisRID,
			&sentence.SentenceIndex,
			&sentence.Content,
			pq.Array(&sentence.Embedding),
			&sentence.Metadata,
			&sentence.CreatedAt,
			&sentence.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		sentences = append(sentences, sentence)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return sentences, nil
}

// DeleteSentencesByAnalysis deletes all sentences of an analysis
func (h *SentencesDBHandler) DeleteSentencesByAnalysis(analysisRID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_sentences_by_analysis($1)`,
		analysisRID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
