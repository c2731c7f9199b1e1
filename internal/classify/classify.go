// Package classify maps a raw prompt to a prompt type using the rule
// catalog's keyword lists.
package classify

import (
	"strings"

	"promptsmith/internal/rules"
)

// Classify returns the catalog type whose keywords match the text most
// strongly. The score is the number of distinct keywords found as
// substrings of the lowercased text. Ties go to the lexicographically
// smaller type key so results are reproducible; zero signal degrades to
// the catalog's default type. Classification never fails.
func Classify(text string, catalog *rules.Catalog) string {
	lower := strings.ToLower(text)

	best := catalog.DefaultType()
	bestScore := 0

	// Types() is sorted, so the first type to reach a given score wins
	// ties by key order.
	for _, promptType := range catalog.Types() {
		entry, err := catalog.Lookup(promptType)
		if err != nil {
			continue
		}
		score := 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = promptType
			bestScore = score
		}
	}

	return best
}
