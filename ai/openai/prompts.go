package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/gnosis/ai"
	"github.com/poiesic/gnosis/core"
)

const expansionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "terms": {
      "type": "array",
      "items": {
        "type": "string",
        "minLength": 1
      }
    }
  },
  "required": ["terms"],
  "additionalProperties": false
}`

const expansionPromptTemplate = `You expand search terms for a personal knowledge base. %s

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Return at most %d terms.
- Never include the input term itself.
- Terms must be short noun phrases, 1-3 words, matching the register of the input (keep case style).
- Do not invent obscure terms; only ones a person would plausibly have written in their notes.
- If no useful terms exist, return "terms": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: term "budget"
Output:
{
  "terms": ["spending plan", "finances", "cost estimate"]
}

Example (nothing useful):
Input: term "xqzkj"
Output:
{
  "terms": []
}`

// buildSystemPrompt creates the system prompt for a strategy. Strategies
// outside the fixed table are caller-supplied custom instructions and are
// used verbatim.
func buildSystemPrompt(strategy core.ExpansionStrategy, maxTerms int) (string, error) {
	instruction, ok := ai.StrategyInstructions[strategy]
	if !ok {
		if strings.TrimSpace(string(strategy)) == "" {
			return "", fmt.Errorf("no instruction for strategy %q", strategy)
		}
		instruction = string(strategy)
	}
	return fmt.Sprintf(expansionPromptTemplate, instruction, expansionResponseSchema, maxTerms), nil
}

// buildUserPrompt renders the term with optional conversation hints.
func buildUserPrompt(term string, hints []string) string {
	var b strings.Builder
	b.WriteString("term ")
	b.WriteString(fmt.Sprintf("%q", scrubString(term)))
	if len(hints) > 0 {
		b.WriteString("\ncontext: ")
		b.WriteString(strings.Join(hints, "; "))
	}
	return b.String()
}
