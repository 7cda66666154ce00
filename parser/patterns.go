package parser

import (
	"regexp"
	"strings"
)

// ReferencePattern builds a regular expression source that matches the three
// reference syntaxes for a node title:
//
//	[[Title]]      bracket reference
//	#Title         tag reference (titles without whitespace only)
//	#[[Title]]     bracketed tag reference
//	Title::        attribute declaration
//
// The same title appearing as plain prose does not match: a syntactic marker
// is always required.
func ReferencePattern(title string) string {
	escaped := regexp.QuoteMeta(title)

	alternatives := []string{
		`\[\[` + escaped + `\]\]`,
		`#\[\[` + escaped + `\]\]`,
	}
	// A bare tag cannot carry whitespace, so only offer the #Title form
	// for single-token titles.
	if !strings.ContainsAny(title, " \t\n") {
		alternatives = append(alternatives, `#`+escaped+`(?:$|[^\w/-])`)
	}
	alternatives = append(alternatives, escaped+`::`)

	return "(?:" + strings.Join(alternatives, "|") + ")"
}

// EntryReferencePattern builds a pattern matching an embedded entry
// reference of the form ((ref)).
func EntryReferencePattern(ref string) string {
	return `\(\(` + regexp.QuoteMeta(ref) + `\)\)`
}

// ReferenceAlternation folds reference patterns for several titles into one
// alternation, used by the OR-to-regex optimization so a set of reference
// conditions costs a single match pass.
func ReferenceAlternation(titles []string) string {
	patterns := make([]string, 0, len(titles))
	for _, title := range titles {
		patterns = append(patterns, ReferencePattern(title))
	}
	return "(?:" + strings.Join(patterns, "|") + ")"
}

// TextAlternation folds plain terms into one case-insensitive alternation.
// Each term is escaped, so the folded pattern matches exactly the union of
// what the individual contains-matches would have matched.
func TextAlternation(terms []string) string {
	escaped := make([]string, 0, len(terms))
	for _, term := range terms {
		escaped = append(escaped, regexp.QuoteMeta(term))
	}
	return "(?i)(?:" + strings.Join(escaped, "|") + ")"
}
