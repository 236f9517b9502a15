// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest builds a controlled keyword vocabulary from one
// journal's back catalog. It walks the configured year range, pulls
// metadata from CrossRef, derives keywords from abstracts and extracted
// methodology sections, and checkpoints after every completed year so an
// interrupted run resumes where it left off.
package harvest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/paper-companion/internal/httputil"
	"github.com/pdiddy/paper-companion/internal/oracle"
	"github.com/pdiddy/paper-companion/internal/pdftext"
	"github.com/pdiddy/paper-companion/internal/section"
	"github.com/pdiddy/paper-companion/internal/vocab"
	"github.com/pdiddy/paper-companion/pkg/types"
)

// Default pacing intervals between external calls.
const (
	defaultMetadataDelay = time.Second
	defaultDownloadDelay = 2 * time.Second
	defaultOracleDelay   = 500 * time.Millisecond
)

const defaultTopKeywords = 100

// Summary holds the outcome of a harvest run.
type Summary struct {
	YearsProcessed int
	YearsSkipped   int
	YearsFailed    int
	Papers         int
	NoAbstract     int
	MethodSections int
	Failed         int
}

// Total returns the number of papers considered, including those
// dropped for missing abstracts.
func (s Summary) Total() int {
	return s.Papers + s.NoAbstract
}

// HasFailures reports whether any year or paper failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0 || s.YearsFailed > 0
}

// Harvester runs the vocabulary-harvest stage.
type Harvester struct {
	Config types.HarvestConfig
	HTTP   *http.Client
	Oracle oracle.Oracle
	Out    io.Writer

	metaPacer     *httputil.Pacer
	downloadPacer *httputil.Pacer
	oraclePacer   *httputil.Pacer
}

// New builds a harvester, filling in default pacing intervals and the
// default vocabulary size where the configuration leaves them zero.
func New(cfg types.HarvestConfig, client *http.Client, o oracle.Oracle, out io.Writer) *Harvester {
	if cfg.MetadataDelay <= 0 {
		cfg.MetadataDelay = defaultMetadataDelay
	}
	if cfg.DownloadDelay <= 0 {
		cfg.DownloadDelay = defaultDownloadDelay
	}
	if cfg.OracleDelay <= 0 {
		cfg.OracleDelay = defaultOracleDelay
	}
	if cfg.TopKeywords <= 0 {
		cfg.TopKeywords = defaultTopKeywords
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Harvester{
		Config:        cfg,
		HTTP:          client,
		Oracle:        o,
		Out:           out,
		metaPacer:     httputil.NewPacer(cfg.MetadataDelay),
		downloadPacer: httputil.NewPacer(cfg.DownloadDelay),
		oraclePacer:   httputil.NewPacer(cfg.OracleDelay),
	}
}

// Run walks the configured year range, skipping years the checkpoint
// already records as complete, and writes the final vocabulary report.
// When fresh is true the previous checkpoint is discarded and every year
// is redone. A year whose metadata listing fails is logged and left
// uncompleted, so the next invocation redoes it; the run continues with
// the following year. Only context cancellation and checkpoint-write
// failures abort the run.
func (h *Harvester) Run(ctx context.Context, fresh bool) (Summary, error) {
	var summary Summary

	cp := &vocab.Checkpoint{}
	if fresh {
		fmt.Fprintf(h.Out, "starting fresh, previous state discarded\n")
	} else {
		loaded, err := vocab.LoadCheckpoint(h.Config.StateFile)
		if err != nil {
			return summary, err
		}
		cp = loaded
	}

	for year := h.Config.StartYear; year <= h.Config.EndYear; year++ {
		if cp.Done(year) {
			fmt.Fprintf(h.Out, "skipped: %d (already completed)\n", year)
			summary.YearsSkipped++
			continue
		}

		keywords, err := h.harvestYear(ctx, year, &summary)
		if err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			fmt.Fprintf(h.Out, "failed  %d: %v\n", year, err)
			summary.YearsFailed++
			continue
		}

		cp.Complete(year, keywords)
		if err := cp.Save(h.Config.StateFile); err != nil {
			return summary, fmt.Errorf("saving checkpoint after %d: %w", year, err)
		}
		summary.YearsProcessed++
	}

	top := vocab.TopK(vocab.Consolidate(vocab.CountOccurrences(cp.Keywords)), h.Config.TopKeywords)
	meta := vocab.ReportMeta{
		StartYear:      h.Config.StartYear,
		EndYear:        h.Config.EndYear,
		CompletedYears: cp.CompletedYears,
		GeneratedAt:    time.Now(),
	}
	if err := vocab.WriteReport(h.Config.VocabFile, top, meta); err != nil {
		return summary, fmt.Errorf("writing vocabulary report: %w", err)
	}

	fmt.Fprintf(h.Out, "vocabulary written: %s (%d keywords)\n", h.Config.VocabFile, len(top))
	return summary, nil
}

// harvestYear processes one year partition and returns every keyword
// occurrence it produced. Individual papers that fail keyword derivation
// are logged and skipped; only metadata-listing failures abort the year.
func (h *Harvester) harvestYear(ctx context.Context, year int, summary *Summary) ([]string, error) {
	if err := h.metaPacer.Wait(ctx); err != nil {
		return nil, err
	}
	papers, dropped, err := FetchYear(ctx, h.HTTP, h.Config, year)
	if err != nil {
		return nil, err
	}
	summary.NoAbstract += dropped
	fmt.Fprintf(h.Out, "year %d: %d papers with usable abstracts (%d without)\n", year, len(papers), dropped)

	var keywords []string
	for i := range papers {
		p := &papers[i]

		if err := h.oraclePacer.Wait(ctx); err != nil {
			return nil, err
		}
		abstractKws, err := h.Oracle.Keywords(ctx, p.Title, p.Abstract, oracle.SourceAbstract)
		if err != nil {
			fmt.Fprintf(h.Out, "failed  %s: %v\n", p.DOI, err)
			summary.Failed++
			continue
		}
		keywords = append(keywords, abstractKws...)
		summary.Papers++

		// Methodology keywords are best effort: any miss along the
		// lookup, download, or extraction path just means the paper
		// contributes abstract keywords only.
		methodText := h.methodText(ctx, p)
		if methodText == "" {
			continue
		}
		if err := h.oraclePacer.Wait(ctx); err != nil {
			return nil, err
		}
		methodKws, err := h.Oracle.Keywords(ctx, p.Title, methodText, oracle.SourceMethod)
		if err != nil {
			fmt.Fprintf(h.Out, "  warning: method keywords for %s: %v\n", p.DOI, err)
			continue
		}
		keywords = append(keywords, methodKws...)
		summary.MethodSections++
	}
	return keywords, nil
}

// methodText tries to obtain the methodology section of one paper via
// the open-access PDF. Every miss returns "".
func (h *Harvester) methodText(ctx context.Context, p *types.Paper) string {
	if p.DOI == "" {
		return ""
	}

	if err := h.metaPacer.Wait(ctx); err != nil {
		return ""
	}
	pdfURL, err := OpenAccessPDFURL(ctx, h.HTTP, p.DOI, h.Config.SemanticScholarAPIKey, h.Config.UserAgent)
	if err != nil {
		fmt.Fprintf(h.Out, "  warning: open-access lookup for %s: %v\n", p.DOI, err)
		return ""
	}
	if pdfURL == "" {
		return ""
	}

	if err := h.downloadPacer.Wait(ctx); err != nil {
		return ""
	}
	data, err := h.downloadPDF(ctx, pdfURL)
	if err != nil {
		fmt.Fprintf(h.Out, "  warning: download for %s: %v\n", p.DOI, err)
		return ""
	}

	text, err := pdftext.ExtractText(data, 0)
	if err != nil {
		fmt.Fprintf(h.Out, "  warning: text extraction for %s: %v\n", p.DOI, err)
		return ""
	}

	sec, ok := section.Extract(text)
	if !ok {
		return ""
	}
	p.MethodText = sec.Text
	return sec.Text
}

// downloadPDF fetches the PDF bytes at url.
func (h *Harvester) downloadPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", h.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, h.HTTP, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
