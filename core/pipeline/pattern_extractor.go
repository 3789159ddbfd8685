package pipeline

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/wikilens/policyref/core/htmlmap"
	"github.com/wikilens/policyref/model"
)

// shortcutPattern matches explicit WP: and MOS: shortcuts in running
// text, case-insensitively. Matches are canonicalized to upper case.
var shortcutPattern = regexp.MustCompile(`(?i)\b(?:WP|MOS):[A-Z0-9]+\b`)

// wikiLinkSuffix validates the page suffix of a Wikipedia namespace
// link before it is treated as a shortcut. Full page titles contain
// underscores and are skipped.
var wikiLinkSuffix = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// policyShortcuts and guidelineShortcuts classify the common shortcut
// suffixes. Anything unknown defaults to essay, the broadest category.
var policyShortcuts = map[string]bool{
	"NPOV": true, "WEIGHT": true, "UNDUE": true, "DUE": true, "BALANCE": true,
	"V": true, "VERIFY": true, "VERIFIABLE": true, "CIRCULAR": true,
	"OR": true, "NOR": true,
	"NOT": true, "NOTCENSORED": true, "INDISCRIMINATE": true,
	"BLP": true,
	"PA":  true, "NPA": true,
	"CIVIL": true, "AGF": true, "CON": true,
	"EW": true, "3RR": true,
}

var guidelineShortcuts = map[string]bool{
	"RS": true, "UGC": true, "SPS": true, "NEWSORG": true,
	"N": true, "GNG": true, "NOTABLE": true,
	"CITE": true, "EL": true, "MOS": true,
	"BRD": true, "FRINGE": true, "COI": true,
}

// PatternExtractor creates an extractor that finds mention candidates
// without any model call: explicit WP:/MOS: shortcuts in the plain text
// plus Wikipedia namespace links in the HTML. It is the offline
// fallback for the OpenAI extractor and never returns an error.
func PatternExtractor() ExtractFunc {
	return func(ctx context.Context, htmlStr string, plainText string) ([]model.Candidate, error) {
		var candidates []model.Candidate
		seen := make(map[string]bool)

		add := func(shortcut, quote, href string) {
			if seen[shortcut] {
				return
			}
			seen[shortcut] = true
			if href == "" {
				href = ShortcutHref(shortcut)
			}
			candidates = append(candidates, model.Candidate{
				Category: ClassifyShortcut(shortcut),
				Shortcut: shortcut,
				Quote:    quote,
				Href:     href,
			})
		}

		for _, loc := range shortcutPattern.FindAllStringIndex(plainText, -1) {
			shortcut := strings.ToUpper(plainText[loc[0]:loc[1]])
			add(shortcut, quoteAround(plainText, loc[0], loc[1]), "")
		}

		for _, link := range collectWikiLinks(htmlStr) {
			add(link.Shortcut, "", link.Href)
		}

		return candidates, nil
	}
}

// ClassifyShortcut maps a canonical shortcut to its category. MOS:
// shortcuts are always Manual of Style guidelines; unknown WP: suffixes
// default to essay.
func ClassifyShortcut(shortcut string) model.Category {
	if strings.HasPrefix(shortcut, "MOS:") {
		return model.CategoryGuideline
	}
	suffix := strings.TrimPrefix(shortcut, "WP:")
	switch {
	case policyShortcuts[suffix]:
		return model.CategoryPolicy
	case guidelineShortcuts[suffix]:
		return model.CategoryGuideline
	default:
		return model.CategoryEssay
	}
}

// ShortcutHref returns the canonical Wikipedia URL for a shortcut.
func ShortcutHref(shortcut string) string {
	if strings.HasPrefix(shortcut, "MOS:") {
		return "https://en.wikipedia.org/wiki/" + shortcut
	}
	return "https://en.wikipedia.org/wiki/Wikipedia:" + strings.TrimPrefix(shortcut, "WP:")
}

// quoteAround returns the text surrounding a match, cut at the nearest
// whitespace so the quote reads as a phrase rather than a byte window.
func quoteAround(text string, start, end int) string {
	const window = 40
	from := start - window
	if from < 0 {
		from = 0
	} else if i := strings.IndexAny(text[from:start], " \t\n"); i >= 0 {
		from += i + 1
	}
	to := end + window
	if to > len(text) {
		to = len(text)
	} else if i := strings.LastIndexAny(text[end:to], " \t\n"); i >= 0 {
		to = end + i
	}
	return strings.TrimSpace(text[from:to])
}

type wikiLink struct {
	Shortcut string
	Href     string
}

// collectWikiLinks walks the fragment's anchors and returns links into
// the Wikipedia project namespace whose page suffix is shortcut-shaped.
func collectWikiLinks(htmlStr string) []wikiLink {
	container, err := htmlmap.ParseFragment(htmlStr)
	if err != nil {
		return nil
	}

	var links []wikiLink
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := parseWikiLink(n); ok {
				links = append(links, link)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(container)
	return links
}

func parseWikiLink(n *html.Node) (wikiLink, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = attr.Val
			break
		}
	}
	const marker = "/wiki/Wikipedia:"
	i := strings.Index(href, marker)
	if i < 0 {
		return wikiLink{}, false
	}

	suffix := href[i+len(marker):]
	if j := strings.IndexAny(suffix, "#?"); j >= 0 {
		suffix = suffix[:j]
	}
	if !wikiLinkSuffix.MatchString(suffix) {
		return wikiLink{}, false
	}

	return wikiLink{
		Shortcut: "WP:" + strings.ToUpper(suffix),
		Href:     href,
	}, true
}
