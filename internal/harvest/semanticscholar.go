// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/paper-companion/internal/httputil"
)

// semanticScholarBase is the Semantic Scholar Graph API root. Declared
// as a var so tests can substitute an httptest server.
var semanticScholarBase = "https://api.semanticscholar.org/graph/v1"

type semanticScholarPaper struct {
	OpenAccessPDF struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

// OpenAccessPDFURL looks up a DOI on Semantic Scholar and returns the
// open-access PDF URL, or "" when the paper has none. An unknown DOI
// (HTTP 404) is not an error; it also yields "".
func OpenAccessPDFURL(ctx context.Context, client *http.Client, doi, apiKey, userAgent string) (string, error) {
	reqURL := fmt.Sprintf("%s/paper/DOI:%s?fields=openAccessPdf", semanticScholarBase, url.PathEscape(doi))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("Semantic Scholar request for %s: %w", doi, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Semantic Scholar returned HTTP %d for %s", resp.StatusCode, doi)
	}

	var sp semanticScholarPaper
	if err := json.NewDecoder(resp.Body).Decode(&sp); err != nil {
		return "", fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return sp.OpenAccessPDF.URL, nil
}
