// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vocab

import (
	"reflect"
	"testing"

	"github.com/pdiddy/paper-companion/pkg/types"
)

func TestCountOccurrences(t *testing.T) {
	seq := []string{"fixed effects", "panel data", "fixed effects", "", "  ", "panel data", "fixed effects", "rdd"}

	got := CountOccurrences(seq)
	want := []types.KeywordCount{
		{Keyword: "fixed effects", Count: 3},
		{Keyword: "panel data", Count: 2},
		{Keyword: "rdd", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountOccurrences() = %v, want %v", got, want)
	}
}

func TestCountOccurrencesTiebreakFirstSeen(t *testing.T) {
	seq := []string{"beta", "alpha", "beta", "alpha"}

	got := CountOccurrences(seq)
	if got[0].Keyword != "beta" || got[1].Keyword != "alpha" {
		t.Errorf("equal counts must keep first-seen order, got %v", got)
	}
}

func TestConsolidateSubstringClusters(t *testing.T) {
	counts := []types.KeywordCount{
		{Keyword: "regression", Count: 5},
		{Keyword: "regression discontinuity", Count: 3},
		{Keyword: "rdd", Count: 1},
	}

	got := Consolidate(counts)
	want := []types.KeywordCount{
		{Keyword: "regression discontinuity", Count: 8},
		{Keyword: "rdd", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Consolidate() = %v, want %v", got, want)
	}
}

func TestConsolidateNoFuzzyMatching(t *testing.T) {
	// "rdd" is conceptually regression discontinuity but shares no
	// substring relation, so it must stay its own cluster.
	counts := CountOccurrences([]string{"regression discontinuity", "rdd", "rdd"})

	got := Consolidate(counts)
	if len(got) != 2 {
		t.Fatalf("Consolidate() produced %d clusters, want 2: %v", len(got), got)
	}
}

func TestConsolidateGreedyOneShot(t *testing.T) {
	// "data" (highest count) absorbs every keyword containing it in a
	// single pass, even when the absorbed keywords also relate to each
	// other. This absorption bias is intended behavior.
	counts := []types.KeywordCount{
		{Keyword: "data", Count: 10},
		{Keyword: "panel data", Count: 4},
		{Keyword: "administrative data", Count: 3},
		{Keyword: "longitudinal data", Count: 2},
	}

	got := Consolidate(counts)
	want := []types.KeywordCount{
		{Keyword: "administrative data", Count: 19},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Consolidate() = %v, want %v", got, want)
	}
}

func TestConsolidatePreservesCountSum(t *testing.T) {
	seq := []string{
		"school funding", "funding", "school funding formula",
		"test scores", "scores", "test scores", "student achievement",
		"achievement", "fixed effects", "effects", "fixed effects",
	}
	counts := CountOccurrences(seq)

	inSum := 0
	for _, kc := range counts {
		inSum += kc.Count
	}

	got := Consolidate(counts)
	outSum := 0
	for _, kc := range got {
		outSum += kc.Count
	}

	if inSum != outSum {
		t.Errorf("count sum changed: in %d, out %d", inSum, outSum)
	}
	if inSum != len(seq) {
		t.Errorf("input sum %d does not match sequence length %d", inSum, len(seq))
	}
}

func TestConsolidateRepresentativeIsLongest(t *testing.T) {
	counts := CountOccurrences([]string{
		"value added", "value added models", "value", "value added",
	})

	got := Consolidate(counts)
	if len(got) != 1 {
		t.Fatalf("want one cluster, got %v", got)
	}
	if got[0].Keyword != "value added models" {
		t.Errorf("representative = %q, want longest member", got[0].Keyword)
	}
}

func TestTopK(t *testing.T) {
	counts := []types.KeywordCount{
		{Keyword: "a", Count: 3}, {Keyword: "b", Count: 2}, {Keyword: "c", Count: 1},
	}

	if got := TopK(counts, 2); len(got) != 2 || got[1].Keyword != "b" {
		t.Errorf("TopK(2) = %v", got)
	}
	if got := TopK(counts, 10); len(got) != 3 {
		t.Errorf("TopK(10) = %v, want all entries", got)
	}
	if got := TopK(counts, 0); len(got) != 3 {
		t.Errorf("TopK(0) = %v, want all entries", got)
	}
}
