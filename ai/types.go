package ai

import "github.com/poiesic/gnosis/core"

// StrategyInstructions maps each expansion strategy to the instruction text
// given to the language model. ExpandCustom is absent on purpose: its
// instruction is caller-supplied.
var StrategyInstructions = map[core.ExpansionStrategy]string{
	core.ExpandFuzzy: "Generate common misspellings, typos, singular/plural forms " +
		"and close morphological variants of the term.",
	core.ExpandSynonyms: "Generate synonyms and near-synonyms that people would " +
		"plausibly use instead of the term when writing notes.",
	core.ExpandRelated: "Generate closely related concepts that tend to appear " +
		"in the same context as the term.",
	core.ExpandBroader: "Generate broader categories and hypernyms the term " +
		"belongs to.",
}
