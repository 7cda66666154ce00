package results

import "strings"

// Stop words to filter out when tokenizing query and content text
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Words in a natural-language query that signal the caller wants
// parent/child context attached to results. A soft signal only.
var structuralKeywords = map[string]bool{
	"parent": true, "parents": true, "child": true, "children": true,
	"under": true, "below": true, "above": true, "nested": true,
	"subtree": true, "hierarchy": true, "outline": true, "structure": true,
	"context": true, "tree": true, "surrounding": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// wantsStructure checks whether a natural-language query asks for
// structural or contextual information.
func wantsStructure(query string) bool {
	for _, word := range tokenizeAndFilter(query) {
		if structuralKeywords[word] {
			return true
		}
	}
	return false
}
