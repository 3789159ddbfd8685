package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wikilens/policyref/helper"
	"github.com/wikilens/policyref/model"
	loadSql "github.com/wikilens/policyref/sql"
)

// MentionsDBHandlerFunctions defines the interface for Mentions database operations.
type MentionsDBHandlerFunctions interface {
	InsertMention(mention *model.Mention) error
	SelectMentionsByAnalysis(analysisRID uuid.UUID) ([]*model.Mention, error)
	SelectMentionsByShortcut(shortcut string, limit int) ([]*model.Mention, error)
	DeleteMentionsByAnalysis(analysisRID uuid.UUID) error
}

// MentionsDBHandler handles mention-related database operations
type MentionsDBHandler struct {
	db *helper.Database
}

// NewMentionsDBHandler creates a new mentions database handler.
// It initializes the database connection and loads mention-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewMentionsDBHandler(db *helper.Database, force bool) (*MentionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	mentionsDbHandler := &MentionsDBHandler{
		db: db,
	}

	err := loadSql.LoadMentionsSql(mentionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load mentions sql", err)
	}

	err = mentionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized MentionsDBHandler")

	return mentionsDbHandler, nil
}

// CreateTable creates the 'mentions' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *MentionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_mentions();`)
	if err != nil {
		log.Panicf("error initializing mentions table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table mentions")

	return nil
}

// InsertMention inserts a new mention
func (h *MentionsDBHandler) InsertMention(mention *model.Mention) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_mention($1, $2, $3, $4, $5, $6, $7, $8)`,
		mention.AnalysisID,
		string(mention.Category),
		mention.Shortcut,
		mention.Quote,
		mention.Href,
		mention.HighlightID,
		pq.Array(sentenceIDsParam(mention.SentenceIDs)),
		mention.Metadata,
	)

	var sentenceIDs pq.Int64Array
	err := row.Scan(
		&mention.ID,
		&mention.AnalysisID,
		&mention.AnalysisRID,
		&mention.Category,
		&mention.Shortcut,
		&mention.Quote,
		&mention.Href,
		&mention.HighlightID,
		&sentenceIDs,
		&mention.Metadata,
		&mention.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	mention.SentenceIDs = sentenceIDsResult(sentenceIDs)

	return nil
}

// sentenceIDsParam converts sentence ids to the int64 slice pq encodes
// as a PostgreSQL integer array.
func sentenceIDsParam(ids []int) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func sentenceIDsResult(ids pq.Int64Array) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// SelectMentionsByAnalysis retrieves all mentions of an analysis in
// highlight-id order
func (h *MentionsDBHandler) SelectMentionsByAnalysis(analysisRID uuid.UUID) ([]*model.Mention, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_mentions_by_analysis($1)`,
		analysisRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// SelectMentionsByShortcut retrieves the most recent mentions of a
// shortcut across all analyses. Matching is case-insensitive.
func (h *MentionsDBHandler) SelectMentionsByShortcut(shortcut string, limit int) ([]*model.Mention, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_mentions_by_shortcut($1, $2)`,
		shortcut,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanMentions(rows)
}

// DeleteMentionsByAnalysis deletes all mentions of an analysis
func (h *MentionsDBHandler) DeleteMentionsByAnalysis(analysisRID uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_mentions_by_analysis($1)`,
		analysisRID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanMentions(rows *sql.Rows) ([]*model.Mention, error) {
	var mentions []*model.Mention
	for rows.Next() {
		mention := &model.Mention{}
		var sentenceIDs pq.Int64Array
		err := rows.Scan(
			&mention.ID,
			&mention.AnalysisID,
			&mention.AnalysisRID,
			&mention.Category,
			&mention.Shortcut,
			&mention.Quote,
			&mention.Href,
			&mention.HighlightID,
			&sentenceIDs,
			&mention.Metadata,
			&mention.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		mention.SentenceIDs = sentenceIDsResult(sentenceIDs)

		mentions = append(mentions, mention)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return mentions, nil
}
