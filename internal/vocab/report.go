// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vocab

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-companion/pkg/types"
)

// ReportMeta carries the provenance header fields of a vocabulary report.
type ReportMeta struct {
	StartYear      int
	EndYear        int
	CompletedYears []int
	GeneratedAt    time.Time
}

// vocabEntryRe matches one machine-parseable vocabulary line:
//
//	"regression discontinuity",  # appeared 8 times
var vocabEntryRe = regexp.MustCompile(`"([^"]+)",\s*#\s*appeared\s+(\d+)\s+times`)

// WriteReport writes the final vocabulary artifact: a commented header,
// a machine-parseable block consumed by the notes stage, and a ranked
// human-readable list. The write is atomic (temp file + rename).
func WriteReport(path string, entries []types.KeywordCount, meta ReportMeta) error {
	var b strings.Builder

	years := append([]int(nil), meta.CompletedYears...)
	sort.Ints(years)

	fmt.Fprintf(&b, "# Controlled vocabulary - top %d keywords\n", len(entries))
	fmt.Fprintf(&b, "# Generated: %s\n", meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "# Based on papers from %d-%d\n", meta.StartYear, meta.EndYear)
	fmt.Fprintf(&b, "# Completed years: %v\n", years)
	fmt.Fprintf(&b, "# Source: CrossRef + Semantic Scholar\n\n")

	b.WriteString("CONTROLLED_KEYWORDS = [\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "    %q,  # appeared %d times\n", e.Keyword, e.Count)
	}
	b.WriteString("]\n\n")

	b.WriteString("# Ranked by frequency\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s (%d occurrences)\n", i+1, e.Keyword, e.Count)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".vocab-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.WriteString(b.String())
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing report: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming report: %w", err)
	}
	return nil
}

// LoadVocabulary parses the machine-parseable block of a vocabulary
// report back into the ordered keyword list. Only the annotated quoted
// lines are read, so header edits do not break parsing.
func LoadVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}

	var keywords []string
	for _, m := range vocabEntryRe.FindAllStringSubmatch(string(data), -1) {
		keywords = append(keywords, m[1])
	}
	return keywords, nil
}
