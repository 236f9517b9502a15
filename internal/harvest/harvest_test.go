// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-companion/internal/oracle"
	"github.com/pdiddy/paper-companion/internal/vocab"
	"github.com/pdiddy/paper-companion/pkg/types"
)

// mockOracle satisfies oracle.Oracle with canned responses.
type mockOracle struct {
	keywordsFn func(title, text string, kind oracle.SourceKind) ([]string, error)
}

func (m *mockOracle) Keywords(_ context.Context, title, text string, kind oracle.SourceKind) ([]string, error) {
	return m.keywordsFn(title, text, kind)
}

func (m *mockOracle) Summarize(context.Context, string, string, oracle.SourceKind, []string) (string, error) {
	return "", fmt.Errorf("not used in harvest")
}

func longAbstract(topic string) string {
	return "This paper studies " + topic + ". " + strings.Repeat("It uses administrative panel data and a regression design. ", 3)
}

func crossrefJSON(items ...map[string]any) []byte {
	data, _ := json.Marshal(map[string]any{"message": map[string]any{"items": items}})
	return data
}

func testConfig(t *testing.T, startYear, endYear int) types.HarvestConfig {
	dir := t.TempDir()
	cfg := types.HarvestConfig{
		ISSN:          "0002-8282",
		StartYear:     startYear,
		EndYear:       endYear,
		TopKeywords:   10,
		StateFile:     filepath.Join(dir, "state", "harvest.yaml"),
		VocabFile:     filepath.Join(dir, "out", "vocabulary.txt"),
		MetadataDelay: time.Nanosecond,
		DownloadDelay: time.Nanosecond,
		OracleDelay:   time.Nanosecond,
	}
	cfg.UserAgent = "paper-companion-test/0.1"
	return cfg
}

func TestFetchYearParsesAndFilters(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/journals/0002-8282/works", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("filter"), "from-pub-date:2020-01-01")
		assert.Contains(t, r.URL.Query().Get("filter"), "until-pub-date:2020-12-31")
		assert.Equal(t, "reader@example.com", r.URL.Query().Get("mailto"))

		w.Write(crossrefJSON(
			map[string]any{
				"DOI":      "10.1/alpha",
				"title":    []string{"School Finance Reform"},
				"abstract": "<jats:p>" + longAbstract("school funding") + "</jats:p>",
				"author": []map[string]string{
					{"given": "Ada", "family": "Lee"},
					{"given": "Ben", "family": "Okafor"},
				},
				"published-print": map[string]any{"date-parts": [][]int{{2020, 3}}},
			},
			map[string]any{
				"DOI":      "10.1/beta",
				"title":    []string{"A Short One"},
				"abstract": "<jats:p>Too short.</jats:p>",
			},
			map[string]any{
				"DOI":              "10.1/gamma",
				"title":            []string{"Online Only"},
				"abstract":         longAbstract("minimum wages"),
				"published-online": map[string]any{"date-parts": [][]int{{2021}}},
			},
		))
	}))
	defer ts.Close()
	old := crossrefBase
	crossrefBase = ts.URL
	defer func() { crossrefBase = old }()

	cfg := testConfig(t, 2020, 2020)
	cfg.Mailto = "reader@example.com"

	papers, dropped, err := FetchYear(context.Background(), ts.Client(), cfg, 2020)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, papers, 2)

	assert.Equal(t, "School Finance Reform", papers[0].Title)
	assert.Equal(t, "2020", papers[0].Year)
	assert.NotContains(t, papers[0].Abstract, "<jats:p>")
	require.Len(t, papers[0].Creators, 2)
	assert.Equal(t, "Lee", papers[0].Creators[0].LastName)

	// published-online year wins when there is no print date.
	assert.Equal(t, "2021", papers[1].Year)
}

func TestCleanAbstract(t *testing.T) {
	in := "<jats:p>We study  <jats:italic>effects</jats:italic>\nof reform.</jats:p>"
	assert.Equal(t, "We study effects of reform.", cleanAbstract(in))
}

func TestOpenAccessPDFURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key123", r.Header.Get("x-api-key"))
		switch {
		case strings.Contains(r.URL.Path, "DOI:10.1/open"):
			w.Write([]byte(`{"openAccessPdf": {"url": "https://example.org/paper.pdf"}}`))
		case strings.Contains(r.URL.Path, "DOI:10.1/closed"):
			w.Write([]byte(`{"openAccessPdf": null}`))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer ts.Close()
	old := semanticScholarBase
	semanticScholarBase = ts.URL
	defer func() { semanticScholarBase = old }()

	url, err := OpenAccessPDFURL(context.Background(), ts.Client(), "10.1/open", "key123", "ua")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/paper.pdf", url)

	url, err = OpenAccessPDFURL(context.Background(), ts.Client(), "10.1/closed", "key123", "ua")
	require.NoError(t, err)
	assert.Empty(t, url)

	url, err = OpenAccessPDFURL(context.Background(), ts.Client(), "10.1/unknown", "key123", "ua")
	require.NoError(t, err)
	assert.Empty(t, url)
}

// runServers stands up CrossRef and Semantic Scholar doubles and points
// the package endpoints at them for one test.
func runServers(t *testing.T, crossref http.HandlerFunc) *atomic.Int32 {
	t.Helper()
	var metadataCalls atomic.Int32

	crTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metadataCalls.Add(1)
		crossref(w, r)
	}))
	s2TS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"openAccessPdf": null}`))
	}))

	oldCR, oldS2 := crossrefBase, semanticScholarBase
	crossrefBase, semanticScholarBase = crTS.URL, s2TS.URL
	t.Cleanup(func() {
		crossrefBase, semanticScholarBase = oldCR, oldS2
		crTS.Close()
		s2TS.Close()
	})
	return &metadataCalls
}

func TestRunHarvestsAndWritesVocabulary(t *testing.T) {
	runServers(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(crossrefJSON(map[string]any{
			"DOI":      "10.1/alpha",
			"title":    []string{"Paper Alpha"},
			"abstract": longAbstract("school funding"),
		}))
	})

	o := &mockOracle{keywordsFn: func(_, _ string, _ oracle.SourceKind) ([]string, error) {
		return []string{"school funding", "panel data"}, nil
	}}

	cfg := testConfig(t, 2019, 2020)
	h := New(cfg, http.DefaultClient, o, io.Discard)

	summary, err := h.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.YearsProcessed)
	assert.Equal(t, 2, summary.Papers)
	assert.False(t, summary.HasFailures())

	vocabulary, err := vocab.LoadVocabulary(cfg.VocabFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"school funding", "panel data"}, vocabulary)

	cp, err := vocab.LoadCheckpoint(cfg.StateFile)
	require.NoError(t, err)
	assert.Equal(t, []int{2019, 2020}, cp.CompletedYears)
}

func TestRunSkipsCompletedYears(t *testing.T) {
	metadataCalls := runServers(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(crossrefJSON(map[string]any{
			"DOI":      "10.1/beta",
			"title":    []string{"Paper Beta"},
			"abstract": longAbstract("minimum wages"),
		}))
	})

	o := &mockOracle{keywordsFn: func(_, _ string, _ oracle.SourceKind) ([]string, error) {
		return []string{"minimum wages"}, nil
	}}

	cfg := testConfig(t, 2019, 2021)

	// A previous run already finished 2019 and 2020.
	prior := &vocab.Checkpoint{}
	prior.Complete(2019, []string{"school funding"})
	prior.Complete(2020, []string{"school funding"})
	require.NoError(t, prior.Save(cfg.StateFile))

	var out strings.Builder
	h := New(cfg, http.DefaultClient, o, &out)

	summary, err := h.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.YearsSkipped)
	assert.Equal(t, 1, summary.YearsProcessed)
	assert.Equal(t, int32(1), metadataCalls.Load(), "only 2021 should hit the metadata API")
	assert.Contains(t, out.String(), "skipped: 2019")

	// Earlier keywords survive into the final report alongside new ones.
	vocabulary, err := vocab.LoadVocabulary(cfg.VocabFile)
	require.NoError(t, err)
	assert.Contains(t, vocabulary, "school funding")
	assert.Contains(t, vocabulary, "minimum wages")
}

func TestRunFreshDiscardsCheckpoint(t *testing.T) {
	metadataCalls := runServers(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(crossrefJSON())
	})

	o := &mockOracle{keywordsFn: func(_, _ string, _ oracle.SourceKind) ([]string, error) {
		return nil, nil
	}}

	cfg := testConfig(t, 2019, 2020)
	prior := &vocab.Checkpoint{}
	prior.Complete(2019, []string{"stale keyword"})
	require.NoError(t, prior.Save(cfg.StateFile))

	h := New(cfg, http.DefaultClient, o, io.Discard)
	summary, err := h.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.YearsProcessed)
	assert.Equal(t, 0, summary.YearsSkipped)
	assert.Equal(t, int32(2), metadataCalls.Load())

	vocabulary, err := vocab.LoadVocabulary(cfg.VocabFile)
	require.NoError(t, err)
	assert.NotContains(t, vocabulary, "stale keyword")
}

func TestRunContinuesAfterPaperFailure(t *testing.T) {
	runServers(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(crossrefJSON(
			map[string]any{"DOI": "10.1/bad", "title": []string{"Bad"}, "abstract": longAbstract("one")},
			map[string]any{"DOI": "10.1/good", "title": []string{"Good"}, "abstract": longAbstract("two")},
		))
	})

	o := &mockOracle{keywordsFn: func(title, _ string, _ oracle.SourceKind) ([]string, error) {
		if title == "Bad" {
			return nil, fmt.Errorf("model unavailable")
		}
		return []string{"difference in differences"}, nil
	}}

	cfg := testConfig(t, 2020, 2020)
	var out strings.Builder
	h := New(cfg, http.DefaultClient, o, &out)

	summary, err := h.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Papers)
	assert.True(t, summary.HasFailures())
	assert.Contains(t, out.String(), "failed  10.1/bad")
}

func TestRunContinuesAfterYearListingFailure(t *testing.T) {
	// 2019's listing fails; 2020 must still be harvested and the failed
	// year left uncompleted so a later run redoes it.
	runServers(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("filter"), "2019") {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		w.Write(crossrefJSON(map[string]any{
			"DOI":      "10.1/gamma",
			"title":    []string{"Paper Gamma"},
			"abstract": longAbstract("class size"),
		}))
	})

	o := &mockOracle{keywordsFn: func(_, _ string, _ oracle.SourceKind) ([]string, error) {
		return []string{"class size"}, nil
	}}

	cfg := testConfig(t, 2019, 2020)
	var out strings.Builder
	h := New(cfg, http.DefaultClient, o, &out)

	summary, err := h.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.YearsFailed)
	assert.Equal(t, 1, summary.YearsProcessed)
	assert.True(t, summary.HasFailures())
	assert.Contains(t, out.String(), "failed  2019")

	cp, err := vocab.LoadCheckpoint(cfg.StateFile)
	require.NoError(t, err)
	assert.Equal(t, []int{2020}, cp.CompletedYears)

	vocabulary, err := vocab.LoadVocabulary(cfg.VocabFile)
	require.NoError(t, err)
	assert.Contains(t, vocabulary, "class size")
}

func TestRunAbortsOnCancelledContext(t *testing.T) {
	runServers(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(crossrefJSON())
	})

	o := &mockOracle{keywordsFn: func(_, _ string, _ oracle.SourceKind) ([]string, error) {
		return nil, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(t, 2019, 2020)
	h := New(cfg, http.DefaultClient, o, io.Discard)

	_, err := h.Run(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}
