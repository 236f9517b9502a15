// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notes generates one literature note per library item: it pulls
// a collection from the reference manager, picks the main PDF among each
// item's attachments, extracts its text, asks the oracle for a summary
// constrained to the controlled vocabulary, and writes a Markdown note
// with a stable author-year filename.
package notes

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/pdiddy/paper-companion/internal/httputil"
	"github.com/pdiddy/paper-companion/internal/noteindex"
	"github.com/pdiddy/paper-companion/internal/oracle"
	"github.com/pdiddy/paper-companion/internal/pdftext"
	"github.com/pdiddy/paper-companion/internal/vocab"
	"github.com/pdiddy/paper-companion/internal/zotero"
	"github.com/pdiddy/paper-companion/pkg/types"
)

const (
	defaultOracleDelay  = time.Second
	defaultMaxTextChars = 100000
)

// supplementRe matches attachment names that are supplementary material
// rather than the paper itself.
var supplementRe = regexp.MustCompile(`(?i)supplement|appendix|supporting.?info|suppl|SI[\s_-]|ESM`)

// Summary holds the outcome of a note-generation run.
type Summary struct {
	Generated int
	Replaced  int
	Skipped   int
	Failed    int
}

// Total returns the number of items processed.
func (s Summary) Total() int {
	return s.Generated + s.Replaced + s.Skipped + s.Failed
}

// HasFailures reports whether any item failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Generator runs the note-generation stage.
type Generator struct {
	Config types.NotesConfig
	Zotero *zotero.Client
	Oracle oracle.Oracle
	Index  *noteindex.Store
	Out    io.Writer

	// Confirm is consulted when a precondition fails (e.g. empty
	// vocabulary) and the operator must choose continue or abort. A nil
	// Confirm aborts.
	Confirm func(prompt string) bool

	// Force regenerates notes for items the index already records.
	Force bool

	oraclePacer *httputil.Pacer
}

// New builds a generator, filling in defaults where the configuration
// leaves them zero.
func New(cfg types.NotesConfig, zc *zotero.Client, o oracle.Oracle, idx *noteindex.Store, out io.Writer) *Generator {
	if cfg.OracleDelay <= 0 {
		cfg.OracleDelay = defaultOracleDelay
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = defaultMaxTextChars
	}
	if cfg.Duplicates == "" {
		cfg.Duplicates = types.DuplicateSuffix
	}
	return &Generator{
		Config:      cfg,
		Zotero:      zc,
		Oracle:      o,
		Index:       idx,
		Out:         out,
		oraclePacer: httputil.NewPacer(cfg.OracleDelay),
	}
}

// Run processes every item in the configured collection. Items whose
// indexed note file is still present in the vault are skipped unless
// Force is set; an indexed item whose note was deleted is regenerated.
// Individual failures are logged and counted but never abort the run.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	vocabulary, err := vocab.LoadVocabulary(g.Config.VocabFile)
	if err != nil || len(vocabulary) == 0 {
		fmt.Fprintf(g.Out, "warning: no controlled vocabulary at %s; notes will be tagged freely\n", g.Config.VocabFile)
		if g.Confirm == nil || !g.Confirm("continue without a controlled vocabulary?") {
			return summary, fmt.Errorf("aborted: no controlled vocabulary")
		}
		vocabulary = nil
	}

	items, err := g.Zotero.CollectionItems(ctx, g.Config.CollectionID)
	if err != nil {
		return summary, fmt.Errorf("listing collection: %w", err)
	}
	fmt.Fprintf(g.Out, "collection %s: %d items\n", g.Config.CollectionID, len(items))

	vault := DirNamespace{Dir: g.Config.VaultDir}
	for i := range items {
		item := &items[i]
		if !g.processable(item) {
			summary.Skipped++
			continue
		}

		if entry, ok, err := g.Index.Lookup(item.Key); err != nil {
			return summary, err
		} else if ok && !g.Force && entry.Filename != "" && vault.Exists(entry.Filename) {
			fmt.Fprintf(g.Out, "skipped: %s (note exists: %s)\n", item.Key, entry.Filename)
			summary.Skipped++
			continue
		}

		replaced, err := g.processItem(ctx, item, vocabulary)
		if err != nil {
			fmt.Fprintf(g.Out, "failed  %s: %v\n", item.Key, err)
			summary.Failed++
			continue
		}
		if replaced {
			summary.Replaced++
		} else {
			summary.Generated++
		}
	}
	return summary, nil
}

// processable reports whether an item gets a note of its own: regular
// bibliographic items do, and so do standalone PDF attachments. Child
// attachments and notes are handled through their parents.
func (g *Generator) processable(item *zotero.Item) bool {
	switch item.Data.ItemType {
	case "note":
		return false
	case "attachment":
		return item.Data.ContentType == "application/pdf" && item.Data.ParentItem == ""
	default:
		return true
	}
}

// processItem generates one note. The returned bool reports whether an
// existing note was replaced.
func (g *Generator) processItem(ctx context.Context, item *zotero.Item, vocabulary []string) (bool, error) {
	title := item.Data.Title
	if title == "" {
		title = item.Data.Filename
	}

	creators := convertCreators(item.Data.Creators)
	if len(creators) == 0 && item.Data.ParentItem != "" {
		if parent, err := g.Zotero.Item(ctx, item.Data.ParentItem); err == nil {
			creators = convertCreators(parent.Data.Creators)
		}
	}

	text, kind, err := g.itemText(ctx, item)
	if err != nil {
		return false, err
	}

	if err := g.oraclePacer.Wait(ctx); err != nil {
		return false, err
	}
	body, err := g.Oracle.Summarize(ctx, title, text, kind, vocabulary)
	if err != nil {
		return false, fmt.Errorf("summarizing: %w", err)
	}

	author := AuthorString(creators)
	year := YearFromDate(item.Data.Date)
	name, replaced := UniqueName(DirNamespace{Dir: g.Config.VaultDir}, author, year, g.Config.Duplicates)

	content, err := renderNote(frontmatter{
		Title:  title,
		Author: author,
		Year:   year,
		Date:   time.Now().Format("2006-01-02"),
		Tags:   []string{"literature-note"},
		Source: string(kind),
	}, body)
	if err != nil {
		return false, err
	}
	if err := writeNote(g.Config.VaultDir, name, content); err != nil {
		return false, err
	}

	if err := g.Index.Record(noteindex.Entry{
		ItemKey:     item.Key,
		Filename:    name,
		Title:       title,
		Author:      author,
		Year:        year,
		Source:      string(kind),
		GeneratedAt: time.Now(),
	}); err != nil {
		return false, err
	}

	if replaced {
		fmt.Fprintf(g.Out, "replaced: %s\n", name)
	} else {
		fmt.Fprintf(g.Out, "wrote: %s\n", name)
	}
	return replaced, nil
}

// itemText returns the best text source for an item: extracted PDF full
// text when a main PDF exists and extracts cleanly, else the abstract.
// An item with neither fails.
func (g *Generator) itemText(ctx context.Context, item *zotero.Item) (string, oracle.SourceKind, error) {
	if pdfKey := g.mainPDFKey(ctx, item); pdfKey != "" {
		data, err := g.Zotero.File(ctx, pdfKey)
		if err != nil {
			fmt.Fprintf(g.Out, "  warning: download for %s: %v\n", item.Key, err)
		} else if text, err := pdftext.ExtractText(data, g.Config.MaxTextChars); err != nil {
			fmt.Fprintf(g.Out, "  warning: text extraction for %s: %v\n", item.Key, err)
		} else {
			return text, oracle.SourceFullText, nil
		}
	}

	if item.Data.AbstractNote != "" {
		return item.Data.AbstractNote, oracle.SourceAbstract, nil
	}
	return "", "", fmt.Errorf("no PDF text and no abstract")
}

// mainPDFKey picks the attachment to treat as the paper itself. For a
// standalone PDF attachment that is the item; for a regular item the
// children are consulted, supplementary material is filtered out unless
// nothing else remains, and the largest file wins.
func (g *Generator) mainPDFKey(ctx context.Context, item *zotero.Item) string {
	if item.Data.ItemType == "attachment" {
		return item.Key
	}

	children, err := g.Zotero.Children(ctx, item.Key)
	if err != nil {
		fmt.Fprintf(g.Out, "  warning: listing attachments for %s: %v\n", item.Key, err)
		return ""
	}

	var pdfs []zotero.Item
	for _, child := range children {
		if child.Data.ItemType == "attachment" && child.Data.ContentType == "application/pdf" {
			pdfs = append(pdfs, child)
		}
	}
	if len(pdfs) == 0 {
		return ""
	}

	var main []zotero.Item
	for _, p := range pdfs {
		if !supplementRe.MatchString(p.Data.Filename) && !supplementRe.MatchString(p.Data.Title) {
			main = append(main, p)
		}
	}
	if len(main) == 0 {
		main = pdfs
	}

	best := main[0]
	for _, p := range main[1:] {
		if p.Data.Filesize > best.Data.Filesize {
			best = p
		}
	}
	return best.Key
}

func convertCreators(creators []zotero.Creator) []types.Creator {
	var out []types.Creator
	for _, c := range creators {
		if c.CreatorType != "" && c.CreatorType != "author" {
			continue
		}
		last := c.LastName
		if last == "" {
			last = c.Name
		}
		if last == "" {
			continue
		}
		out = append(out, types.Creator{LastName: last, FirstName: c.FirstName})
	}
	return out
}
