// Package ground verifies extracted mention candidates against the
// discussion text and links the survivors to the sentences containing
// them. It is the precision gate between the extractor and the UI:
// candidates without any textual presence are dropped, not flagged.
package ground

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wikilens/policyref/model"
)

// DefaultMinSuffixLen is the minimum length a bare suffix ("NPOV" in
// "WP:NPOV") must have to count as a whole-word match on its own. Very
// short suffixes like "OR" or "N" produce too many false positives, so
// below this length only the exact shortcut match grounds a candidate.
const DefaultMinSuffixLen = 3

// Options configures grounding.
type Options struct {
	// MinSuffixLen overrides DefaultMinSuffixLen; zero keeps the default.
	MinSuffixLen int
}

// Result is the grounded outcome across all categories.
type Result struct {
	Categories []model.CategoryResult
	Binding    model.HighlightBinding
}

// Ground filters candidates to those present in plainText, assigns
// deterministic highlight ids and computes per-sentence associations.
// Candidates without a shortcut are skipped; empty plainText drops
// everything. Ground never fails.
func Ground(candidates []model.Candidate, plainText string, sentences []model.SentenceSpan, opts Options) *Result {
	minSuffix := opts.MinSuffixLen
	if minSuffix <= 0 {
		minSuffix = DefaultMinSuffixLen
	}

	// Bucket candidates per category, deduplicating by shortcut so the
	// same mention surfacing from several extractor chunks counts once.
	type bucket struct {
		hadCandidates bool
		mentions      []model.Mention
		seen          map[string]bool
	}
	buckets := make(map[model.Category]*bucket, len(model.AllCategories))
	for _, c := range model.AllCategories {
		buckets[c] = &bucket{seen: make(map[string]bool)}
	}

	grounded := make(map[string]bool)
	for _, cand := range candidates {
		b, ok := buckets[cand.Category]
		if !ok {
			continue
		}
		b.hadCandidates = true

		if cand.Shortcut == "" || b.seen[cand.Shortcut] {
			continue
		}
		b.seen[cand.Shortcut] = true

		if !Matches(plainText, cand.Shortcut, minSuffix) {
			continue
		}
		grounded[cand.Shortcut] = true

		b.mentions = append(b.mentions, model.Mention{
			Category:    cand.Category,
			Shortcut:    cand.Shortcut,
			Quote:       cand.Quote,
			Href:        cand.Href,
			SentenceIDs: sentenceIDs(sentences, cand.Shortcut, minSuffix),
		})
	}

	binding := assignHighlightIDs(grounded)

	result := &Result{Binding: binding}
	for _, category := range model.AllCategories {
		b := buckets[category]

		for i := range b.mentions {
			id := binding.IDByShortcut[b.mentions[i].Shortcut]
			b.mentions[i].HighlightID = id
			binding.SentencesByID[id] = b.mentions[i].SentenceIDs
		}
		sort.Slice(b.mentions, func(i, j int) bool {
			return b.mentions[i].HighlightID < b.mentions[j].HighlightID
		})

		result.Categories = append(result.Categories, categoryResult(category, b.hadCandidates, b.mentions))
	}

	return result
}

// Matches reports whether shortcut occurs in text: either as an exact
// case-insensitive substring, or - when the shortcut has a namespace
// separator and its bare suffix is at least minSuffix long - as a
// case-insensitive whole word.
func Matches(text, shortcut string, minSuffix int) bool {
	if text == "" || shortcut == "" {
		return false
	}
	if containsFold(text, shortcut) {
		return true
	}
	if i := strings.LastIndex(shortcut, ":"); i >= 0 {
		suffix := shortcut[i+1:]
		if len(suffix) >= minSuffix && wordMatch(text, suffix) {
			return true
		}
	}
	return false
}

func sentenceIDs(sentences []model.SentenceSpan, shortcut string, minSuffix int) []int {
	var ids []int
	for _, span := range sentences {
		if Matches(span.Text, shortcut, minSuffix) {
			ids = append(ids, span.Index)
		}
	}
	return ids
}

// assignHighlightIDs gives each distinct grounded shortcut a dense id,
// iterating in lexicographic order so reruns over identical input are
// reproducible.
func assignHighlightIDs(grounded map[string]bool) model.HighlightBinding {
	shortcuts := make([]string, 0, len(grounded))
	for s := range grounded {
		shortcuts = append(shortcuts, s)
	}
	sort.Strings(shortcuts)

	binding := model.NewHighlightBinding()
	for i, s := range shortcuts {
		binding.IDByShortcut[s] = i
	}
	return binding
}

func categoryResult(category model.Category, hadCandidates bool, mentions []model.Mention) model.CategoryResult {
	cr := model.CategoryResult{
		Category: category,
		Mentions: mentions,
	}
	switch {
	case len(mentions) > 0:
		cr.State = model.CategoryStateFound
	case hadCandidates:
		cr.State = model.CategoryStateNoneGrounded
		cr.Message = fmt.Sprintf("Candidate %s were extracted but none could be found in the discussion text.", category.Plural())
	default:
		cr.State = model.CategoryStateNoCandidates
		cr.Message = fmt.Sprintf("No %s explicitly mentioned in this discussion.", category.Plural())
	}
	return cr
}

func containsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substr))
}

// wordMatch reports a case-insensitive whole-word occurrence of word.
func wordMatch(text, word string) bool {
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}
