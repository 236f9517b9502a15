// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package oracle is the language-model boundary: it turns paper text
// into keyword lists and structured note summaries. Callers depend only
// on the Oracle contract (ordered lowercase keywords, prose summary);
// any completion backend satisfying it is substitutable, and tests
// supply mocks.
package oracle

import (
	"context"
	"strings"
)

// SourceKind identifies which text source a derivation call analyzes.
type SourceKind string

const (
	// SourceAbstract analyzes the paper abstract.
	SourceAbstract SourceKind = "abstract"

	// SourceMethod analyzes an extracted methodology section.
	SourceMethod SourceKind = "method"

	// SourceFullText analyzes the whole extracted document text.
	SourceFullText SourceKind = "full_text"
)

// Oracle derives keywords and summaries from paper text.
type Oracle interface {
	// Keywords returns an ordered sequence of lowercase keyword strings
	// for the given text. The backend is instructed to return 6-12
	// entries; callers must tolerate deviations.
	Keywords(ctx context.Context, title, text string, kind SourceKind) ([]string, error)

	// Summarize returns a structured prose summary. When vocabulary is
	// non-empty the backend is constrained to tag only from it.
	Summarize(ctx context.Context, title, text string, kind SourceKind, vocabulary []string) (string, error)
}

// parseKeywords splits a semicolon-separated completion into clean
// lowercase keywords, dropping empties.
func parseKeywords(content string) []string {
	var keywords []string
	for _, part := range strings.Split(content, ";") {
		kw := strings.ToLower(strings.TrimSpace(part))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
