// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"sort"
	"strings"
)

// Count is one label and the number of times it occurred.
type Count struct {
	Label string `json:"label" yaml:"label"`
	N     int    `json:"count" yaml:"count"`
}

// CountTokens splits each value on commas, trims the pieces, and counts
// them in first-appearance order. Empty pieces are ignored. Repeats within
// one value count separately.
func CountTokens(values []string) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			i, ok := index[tok]
			if !ok {
				i = len(counts)
				index[tok] = i
				counts = append(counts, Count{Label: tok})
			}
			counts[i].N++
		}
	}
	return counts
}

// MostCommon returns the n largest counts. Ties keep first-appearance order.
func MostCommon(counts []Count, n int) []Count {
	sorted := append([]Count(nil), counts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].N > sorted[j].N })
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
