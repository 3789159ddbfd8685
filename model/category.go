package model

import "fmt"

// Category classifies a Wikipedia reference page.
type Category string

const (
	CategoryPolicy    Category = "policy"
	CategoryGuideline Category = "guideline"
	CategoryEssay     Category = "essay"
)

// AllCategories lists the categories in their fixed reporting order.
var AllCategories = []Category{CategoryPolicy, CategoryGuideline, CategoryEssay}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryPolicy, CategoryGuideline, CategoryEssay:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown category: %s", s)
	}
}

// Plural returns the user-facing plural form of the category.
func (c Category) Plural() string {
	switch c {
	case CategoryPolicy:
		return "policies"
	case CategoryGuideline:
		return "guidelines"
	case CategoryEssay:
		return "essays"
	default:
		return string(c) + "s"
	}
}

// CategoryState describes the outcome of grounding one category.
type CategoryState string

const (
	// CategoryStateFound means at least one candidate survived grounding.
	CategoryStateFound CategoryState = "found"
	// CategoryStateNoneGrounded means candidates existed but none could be
	// located in the discussion text.
	CategoryStateNoneGrounded CategoryState = "none_grounded"
	// CategoryStateNoCandidates means the extractor produced nothing for
	// this category.
	CategoryStateNoCandidates CategoryState = "no_candidates"
)
