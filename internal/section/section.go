// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package section locates the methodology discussion inside the linear
// text of an academic paper. PDF text streams label method sections
// inconsistently (numbered, titled, merged with a data section, or not
// labeled at all), so extraction layers three ranked strategies instead
// of relying on a single pattern.
package section

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Strategy identifies which heuristic produced an extracted section.
type Strategy string

const (
	// StrategyHeader is an explicit numbered or titled methodology header.
	StrategyHeader Strategy = "header"

	// StrategyDataHeader is a combined "Data and Methods"-style header.
	StrategyDataHeader Strategy = "data-header"

	// StrategyDensity is the method-keyword density fallback.
	StrategyDensity Strategy = "density"
)

// Section is a methodology excerpt extracted from a paper's full text.
type Section struct {
	// Text is the excerpt, bounded by the extraction limits.
	Text string

	// Strategy records which heuristic matched.
	Strategy Strategy
}

// Limits bounds the size of an extracted section.
type Limits struct {
	// MinChars discards header-matched candidates shorter than this.
	MinChars int

	// DensityMinChars is the (higher) floor for density-matched runs.
	DensityMinChars int

	// MaxChars truncates candidates, keeping the head.
	MaxChars int
}

// DefaultLimits returns the standard extraction bounds.
func DefaultLimits() Limits {
	return Limits{MinChars: 200, DensityMinChars: 500, MaxChars: 25000}
}

// methodKeywords are the phrases that signal methodology content, as
// regular-expression fragments (so "methods?" covers both forms).
var methodKeywords = []string{
	`methods?`, `methodology`, `empirical strategy`, `empirical strategies`,
	`empirical approach`, `empirical approaches`, `analytical approach`,
	`analytic approach`, `analytical approaches`, `analytic approaches`,
	`research design`, `empirical analysis`, `empirical framework`,
	`empirical methodology`, `identification strategy`, `identification strategies`,
	`data and methods?`, `estimation strategy`, `estimation strategies`,
	`econometric approach`, `statistical approach`, `causal identification`,
}

var keywordAlt = strings.Join(methodKeywords, "|")

var (
	// hdrNumbered matches a section marker (roman or arabic numeral)
	// followed by a methodology phrase, alone on its line.
	hdrNumbered = regexp.MustCompile(`(?i)^\s*(?:[ivx]+|\d+)\.?\s*(?:` + keywordAlt + `)\s*\.?\s*$`)

	// hdrBare matches a methodology phrase alone on its line.
	hdrBare = regexp.MustCompile(`(?i)^\s*(?:` + keywordAlt + `)\s*$`)

	// hdrDataNumbered matches a combined header that begins with "data"
	// and ends with a methodology phrase, behind a section marker,
	// e.g. "III. Data and Empirical Strategy".
	hdrDataNumbered = regexp.MustCompile(`(?i)^\s*(?:[ivx]+|\d+)\.?\s*data\b.*(?:` + keywordAlt + `)\s*$`)

	// hdrDataBare is the unnumbered form, e.g. "Data and Methods".
	hdrDataBare = regexp.MustCompile(`(?i)^\s*data\b.*(?:` + keywordAlt + `)\s*$`)

	// boundaryNumbered matches the start of the next numbered section.
	boundaryNumbered = regexp.MustCompile(`^\s*(?:[IVX]+|\d+)\.?\s+[A-Z]`)

	// boundaryNamed matches back-matter and follow-on section markers.
	boundaryNamed = regexp.MustCompile(`^\s*(?:References|Conclusion|Conclusions|Results|Discussion|Appendix|Bibliography)\b`)

	// boundaryTitleWord matches a lone capitalized word, which in
	// extracted PDF text is almost always an unnumbered heading. Only
	// bare-header captures stop here; numbered captures run until the
	// next numbered section.
	boundaryTitleWord = regexp.MustCompile(`^\s*[A-Z][a-z]+\s*$`)
)

// densityRes holds one compiled word-boundary matcher per method keyword.
var densityRes = compileDensityRes()

func compileDensityRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(methodKeywords))
	for i, kw := range methodKeywords {
		res[i] = regexp.MustCompile(`(?i)\b(?:` + kw + `)\b`)
	}
	return res
}

// Extract returns the best-candidate methodology excerpt of fullText
// using DefaultLimits. The second return value is false when no
// candidate qualifies; callers then fall back to abstract-only analysis.
func Extract(fullText string) (Section, bool) {
	return ExtractWithLimits(fullText, DefaultLimits())
}

// ExtractWithLimits runs the layered extraction with explicit bounds.
// Header strategies are preferred over the density fallback even when
// the fallback would yield a longer run; among header matches the
// longest qualifying capture wins.
func ExtractWithLimits(fullText string, lim Limits) (Section, bool) {
	if sec, ok := extractByHeader(fullText, lim); ok {
		return sec, true
	}
	if sec, ok := extractByDensity(fullText, lim); ok {
		return sec, true
	}
	return Section{}, false
}

// headerKind pairs a header pattern with its strategy and terminator set.
type headerKind struct {
	re              *regexp.Regexp
	strategy        Strategy
	stopAtBareTitle bool
}

// headerKinds is the evaluation order: explicit headers before combined
// data headers, numbered before bare. Bare headers stop at the next lone
// title word; numbered headers run until the next numbered section.
var headerKinds = []headerKind{
	{hdrNumbered, StrategyHeader, false},
	{hdrBare, StrategyHeader, true},
	{hdrDataNumbered, StrategyDataHeader, false},
	{hdrDataBare, StrategyDataHeader, true},
}

// extractByHeader scans for methodology header lines and captures from
// each header to the next section boundary, keeping the longest
// qualifying candidate.
func extractByHeader(fullText string, lim Limits) (Section, bool) {
	lines, offsets := splitLines(fullText)

	var best Section
	bestLen := 0

	for _, kind := range headerKinds {
		for i, line := range lines {
			if !kind.re.MatchString(line) {
				continue
			}
			end := len(fullText)
			for j := i + 1; j < len(lines); j++ {
				if isBoundary(lines[j], kind.stopAtBareTitle) {
					end = offsets[j]
					break
				}
			}
			candidate := truncateRunes(fullText[offsets[i]:end], lim.MaxChars)
			if len(candidate) < lim.MinChars {
				continue
			}
			if len(candidate) > bestLen {
				best = Section{Text: candidate, Strategy: kind.strategy}
				bestLen = len(candidate)
			}
		}
	}

	if bestLen == 0 {
		return Section{}, false
	}
	return best, true
}

// isBoundary reports whether line opens a new section. A header line
// that is itself a methodology header does not count as content here:
// the next numbered heading, back-matter marker, or (for bare captures)
// lone title word ends the capture.
func isBoundary(line string, bareTitle bool) bool {
	if boundaryNumbered.MatchString(line) || boundaryNamed.MatchString(line) {
		return true
	}
	return bareTitle && boundaryTitleWord.MatchString(line)
}

// extractByDensity is the fallback: split the text into blank-line
// separated blocks, group consecutive method-mentioning blocks into
// runs, and keep the run with the most distinct method keywords. A
// single passing mention never qualifies a section on its own; the run
// must clear DensityMinChars.
func extractByDensity(fullText string, lim Limits) (Section, bool) {
	blocks := strings.Split(fullText, "\n\n")

	var best string
	bestScore := 0

	var run []string
	flush := func() {
		if len(run) == 0 {
			return
		}
		joined := strings.Join(run, "\n\n")
		run = nil
		if len(joined) <= lim.DensityMinChars {
			return
		}
		score := distinctKeywordCount(joined)
		if score > bestScore {
			bestScore = score
			best = joined
		}
	}

	for _, block := range blocks {
		if mentionsMethod(block) {
			run = append(run, block)
			continue
		}
		flush()
	}
	flush()

	if best == "" {
		return Section{}, false
	}
	return Section{Text: truncateRunes(best, lim.MaxChars), Strategy: StrategyDensity}, true
}

// mentionsMethod reports whether any method keyword appears in block.
func mentionsMethod(block string) bool {
	for _, re := range densityRes {
		if re.MatchString(block) {
			return true
		}
	}
	return false
}

// distinctKeywordCount counts how many distinct method keywords appear in text.
func distinctKeywordCount(text string) int {
	n := 0
	for _, re := range densityRes {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// splitLines splits text into lines and records the byte offset of each
// line start, so captures can reference the original string.
func splitLines(text string) (lines []string, offsets []int) {
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			offsets = append(offsets, start)
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	offsets = append(offsets, start)
	return lines, offsets
}

// truncateRunes keeps the first max bytes of s without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
