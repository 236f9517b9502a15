// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab turns the noisy keyword multiset accumulated across a
// corpus into a compact controlled vocabulary, and persists the harvest
// checkpoint and the final vocabulary report.
package vocab

import (
	"sort"
	"strings"

	"github.com/pdiddy/paper-companion/pkg/types"
)

// CountOccurrences tallies a keyword occurrence sequence into an ordered
// count list: descending count, ties broken by first appearance in the
// sequence. Keywords are compared verbatim; callers are expected to have
// lowercased them already (the oracle contract guarantees this).
func CountOccurrences(keywords []string) []types.KeywordCount {
	counts := make(map[string]int, len(keywords))
	firstSeen := make(map[string]int, len(keywords))
	var order []string

	for i, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := counts[kw]; !ok {
			firstSeen[kw] = i
			order = append(order, kw)
		}
		counts[kw]++
	}

	out := make([]types.KeywordCount, 0, len(order))
	for _, kw := range order {
		out = append(out, types.KeywordCount{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Keyword] < firstSeen[out[j].Keyword]
	})
	return out
}

// Consolidate merges keywords that contain each other as substrings into
// clusters, one greedy pass in priority order. For each not-yet-assigned
// keyword, every other unassigned keyword that is a substring of it (or
// contains it) joins its cluster; the cluster is represented by its
// longest member and carries the sum of member counts. Membership is
// fixed the moment a keyword is first visited or captured; there is no
// iterative convergence.
//
// Clustering is purely lexical: a short common term ("data") will absorb
// every longer keyword containing it, which biases representatives
// toward longer, more specific phrases. Downstream vocabulary-
// constrained tagging depends on that bias.
//
// The input must already be ordered by descending count with a
// deterministic tiebreak (see CountOccurrences). The output is ordered
// by descending aggregate count, ties broken by cluster formation order,
// and its count sum always equals the input count sum.
func Consolidate(counts []types.KeywordCount) []types.KeywordCount {
	assigned := make(map[string]bool, len(counts))
	var clusters []types.KeywordCount

	for _, kc := range counts {
		if assigned[kc.Keyword] {
			continue
		}
		assigned[kc.Keyword] = true

		representative := kc.Keyword
		total := kc.Count

		for _, other := range counts {
			if assigned[other.Keyword] {
				continue
			}
			if !strings.Contains(kc.Keyword, other.Keyword) &&
				!strings.Contains(other.Keyword, kc.Keyword) {
				continue
			}
			assigned[other.Keyword] = true
			total += other.Count
			if len(other.Keyword) > len(representative) {
				representative = other.Keyword
			}
		}

		clusters = append(clusters, types.KeywordCount{Keyword: representative, Count: total})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Count > clusters[j].Count
	})
	return clusters
}

// TopK returns the first k entries of an ordered count list, or the
// whole list when it is shorter.
func TopK(counts []types.KeywordCount, k int) []types.KeywordCount {
	if k <= 0 || k >= len(counts) {
		return counts
	}
	return counts[:k]
}
