// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-companion/internal/httputil"
	"github.com/pdiddy/paper-companion/pkg/types"
)

// crossrefBase is the CrossRef REST API root. Declared as a var so tests
// can substitute an httptest server.
var crossrefBase = "https://api.crossref.org"

// crossrefRows is the page size requested per year. One journal year is
// well under this, so a single request covers a partition.
const crossrefRows = 1000

// minAbstractChars is the shortest abstract considered usable. Anything
// shorter is typically a publisher placeholder.
const minAbstractChars = 100

// xmlTagRe strips JATS markup (<jats:p>, <jats:italic>, ...) that
// CrossRef embeds in abstracts.
var xmlTagRe = regexp.MustCompile(`<[^>]+>`)

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	DOI      string   `json:"DOI"`
	Title    []string `json:"title"`
	Abstract string   `json:"abstract"`
	Author   []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	PublishedPrint  crossrefDate `json:"published-print"`
	PublishedOnline crossrefDate `json:"published-online"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

func (d crossrefDate) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}

// FetchYear lists one journal's works published in a single year. Items
// without a usable abstract (over minAbstractChars after markup
// stripping) are dropped; the second return value reports how many.
func FetchYear(ctx context.Context, client *http.Client, cfg types.HarvestConfig, year int) ([]types.Paper, int, error) {
	params := url.Values{
		"filter": {fmt.Sprintf("from-pub-date:%d-01-01,until-pub-date:%d-12-31", year, year)},
		"rows":   {fmt.Sprintf("%d", crossrefRows)},
		"select": {"DOI,title,abstract,author,published-print,published-online"},
	}
	if cfg.Mailto != "" {
		params.Set("mailto", cfg.Mailto)
	}

	reqURL := fmt.Sprintf("%s/journals/%s/works?%s", crossrefBase, url.PathEscape(cfg.ISSN), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("CrossRef request for %d: %w", year, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("CrossRef returned HTTP %d for %d", resp.StatusCode, year)
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, 0, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	var papers []types.Paper
	dropped := 0
	for _, item := range cr.Message.Items {
		abstract := cleanAbstract(item.Abstract)
		if len(abstract) <= minAbstractChars {
			dropped++
			continue
		}

		p := types.Paper{
			DOI:      item.DOI,
			Abstract: abstract,
		}
		if len(item.Title) > 0 {
			p.Title = strings.TrimSpace(item.Title[0])
		}
		if y := item.PublishedPrint.year(); y > 0 {
			p.Year = fmt.Sprintf("%d", y)
		} else if y := item.PublishedOnline.year(); y > 0 {
			p.Year = fmt.Sprintf("%d", y)
		} else {
			p.Year = fmt.Sprintf("%d", year)
		}
		for _, a := range item.Author {
			p.Creators = append(p.Creators, types.Creator{FirstName: a.Given, LastName: a.Family})
		}
		papers = append(papers, p)
	}
	return papers, dropped, nil
}

// cleanAbstract strips JATS tags and collapses whitespace.
func cleanAbstract(abstract string) string {
	s := xmlTagRe.ReplaceAllString(abstract, " ")
	return strings.Join(strings.Fields(s), " ")
}
