package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed analyses.sql
var analysesSQL string

//go:embed sentences.sql
var sentencesSQL string

//go:embed mentions.sql
var mentionsSQL string

// Function lists for verification
var AnalysesFunctions = []string{
	"init_analyses",
	"insert_analysis",
	"select_analysis",
	"select_all_analyses",
	"search_analyses",
	"update_analysis",
	"delete_analysis",
}

var SentencesFunctions = []string{
	"init_sentences",
	"insert_sentence",
	"select_sentences_by_analysis",
	"select_sentences_by_similarity",
	"delete_sentences_by_analysis",
}

var MentionsFunctions = []string{
	"init_mentions",
	"insert_mention",
	"select_mentions_by_analysis",
	"select_mentions_by_shortcut",
	"delete_mentions_by_analysis",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadAnalysesSql loads analysis-related SQL functions
func LoadAnalysesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, AnalysesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing analyses functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(analysesSQL)
	if err != nil {
		return fmt.Errorf("error executing analyses SQL: %w", err)
	}

	exist, err := checkFunctions(db, AnalysesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL analyses functions loaded successfully")
	return nil
}

// LoadSentencesSql loads sentence-related SQL functions. The sentences
// table references analyses, so LoadAnalysesSql must run first.
func LoadSentencesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, SentencesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing sentences functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(sentencesSQL)
	if err != nil {
		return fmt.Errorf("error executing sentences SQL: %w", err)
	}

	exist, err := checkFunctions(db, SentencesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL sentences functions loaded successfully")
	return nil
}

// LoadMentionsSql loads mention-related SQL functions. The mentions
// table references analyses, so LoadAnalysesSql must run first.
func LoadMentionsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, MentionsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing mentions functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(mentionsSQL)
	if err != nil {
		return fmt.Errorf("error executing mentions SQL: %w", err)
	}

	exist, err := checkFunctions(db, MentionsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL mentions functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadAnalysesSql(db, force); err != nil {
		return err
	}

	if err := LoadSentencesSql(db, force); err != nil {
		return err
	}

	if err := LoadMentionsSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
