package openai

import "strings"

// scrubString strips punctuation and surrounding whitespace from a search
// term before it is embedded in a prompt.
func scrubString(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(".,!?;:\"'()[]{}—–", r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
