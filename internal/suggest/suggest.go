// Package suggest powers the "Did you mean: 'x'?" hints the evaluator
// appends to NameError and AttributeError messages, ranking candidate
// names by Levenshtein distance.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Name returns the candidate closest to target, or "" if none is a close
// enough fuzzy match to be worth suggesting.
func Name(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
