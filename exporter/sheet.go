// Package exporter renders an analysis result as a spreadsheet-ready
// table: one row per grounded mention, TSV for direct paste, CSV for
// file import, JSON for programmatic use.
package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/wikilens/policyref/model"
)

const (
	FormatTSV  = "tsv"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// contextMaxLen is the truncation length of the First Context column.
const contextMaxLen = 100

var header = []string{"Category", "Shortcut", "Count", "First Context", "URL"}

// Format renders the grounded mentions of result in the given format.
// Rows are ordered category first (policy, guideline, essay), then by
// highlight id within the category.
func Format(result *model.AnalysisResult, format string) (string, error) {
	switch format {
	case FormatTSV:
		return formatTSV(result), nil
	case FormatCSV:
		return formatCSV(result)
	case FormatJSON:
		return formatJSON(result)
	default:
		return "", fmt.Errorf("unsupported format: %s (use tsv, csv or json)", format)
	}
}

// row builds the cell values for one mention.
func row(result *model.AnalysisResult, m model.Mention) []string {
	context := result.FirstContext(m, contextMaxLen)
	context = strings.ReplaceAll(context, "\t", " ")
	context = strings.ReplaceAll(context, "\n", " ")

	return []string{
		titleCase(string(m.Category)),
		m.Shortcut,
		strconv.Itoa(len(m.SentenceIDs)),
		strings.TrimSpace(context),
		m.Href,
	}
}

func formatTSV(result *model.AnalysisResult) string {
	lines := []string{strings.Join(header, "\t")}
	for _, m := range result.Mentions() {
		lines = append(lines, strings.Join(row(result, m), "\t"))
	}
	return strings.Join(lines, "\n")
}

func formatCSV(result *model.AnalysisResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, m := range result.Mentions() {
		if err := w.Write(row(result, m)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatJSON(result *model.AnalysisResult) (string, error) {
	out := make(map[string][]model.Mention, len(model.AllCategories))
	for _, category := range model.AllCategories {
		mentions := []model.Mention{}
		if cr := result.CategoryResult(category); cr != nil {
			mentions = append(mentions, cr.Mentions...)
		}
		out[category.Plural()] = mentions
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
