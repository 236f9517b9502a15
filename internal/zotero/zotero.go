// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero is a typed client for the slice of the Zotero Web API
// the notes stage needs: collection listing, item children, single-item
// lookup, and attachment file download.
package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/paper-companion/internal/httputil"
)

// apiBase is the Zotero Web API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.zotero.org"

// pageLimit is the Zotero maximum page size.
const pageLimit = 100

// Creator is one entry of an item's creator list.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	// Name is set instead of First/LastName for single-field creators
	// (institutions, some imported records).
	Name string `json:"name"`
}

// ItemData is the data envelope of a Zotero item.
type ItemData struct {
	ItemType     string    `json:"itemType"`
	Title        string    `json:"title"`
	AbstractNote string    `json:"abstractNote"`
	Date         string    `json:"date"`
	Creators     []Creator `json:"creators"`
	ParentItem   string    `json:"parentItem"`
	ContentType  string    `json:"contentType"`
	Filename     string    `json:"filename"`
	Filesize     int64     `json:"filesize"`
	LinkMode     string    `json:"linkMode"`
	DOI          string    `json:"DOI"`
}

// Item is one Zotero library item.
type Item struct {
	Key     string   `json:"key"`
	Version int      `json:"version"`
	Data    ItemData `json:"data"`
}

// Client talks to one Zotero user library.
type Client struct {
	LibraryID string
	APIKey    string
	UserAgent string
	HTTP      *http.Client

	// BaseURL overrides the API root when non-empty. Tests point it at
	// an httptest server.
	BaseURL string
}

// NewClient builds a client for the given user library.
func NewClient(libraryID, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{LibraryID: libraryID, APIKey: apiKey, HTTP: httpClient}
}

// CollectionItems returns every item in a collection, following
// start/limit pagination until the server runs out of pages.
func (c *Client) CollectionItems(ctx context.Context, collectionKey string) ([]Item, error) {
	var all []Item
	for start := 0; ; start += pageLimit {
		path := fmt.Sprintf("/users/%s/collections/%s/items", c.LibraryID, url.PathEscape(collectionKey))
		params := url.Values{
			"start":  {fmt.Sprintf("%d", start)},
			"limit":  {fmt.Sprintf("%d", pageLimit)},
			"format": {"json"},
		}

		var batch []Item
		if err := c.getJSON(ctx, path, params, &batch); err != nil {
			return nil, fmt.Errorf("listing collection %s: %w", collectionKey, err)
		}
		all = append(all, batch...)
		if len(batch) < pageLimit {
			return all, nil
		}
	}
}

// Children returns the child items (attachments, notes) of an item.
func (c *Client) Children(ctx context.Context, itemKey string) ([]Item, error) {
	path := fmt.Sprintf("/users/%s/items/%s/children", c.LibraryID, url.PathEscape(itemKey))

	var children []Item
	if err := c.getJSON(ctx, path, nil, &children); err != nil {
		return nil, fmt.Errorf("listing children of %s: %w", itemKey, err)
	}
	return children, nil
}

// Item fetches a single item by key.
func (c *Client) Item(ctx context.Context, itemKey string) (*Item, error) {
	path := fmt.Sprintf("/users/%s/items/%s", c.LibraryID, url.PathEscape(itemKey))

	var item Item
	if err := c.getJSON(ctx, path, nil, &item); err != nil {
		return nil, fmt.Errorf("fetching item %s: %w", itemKey, err)
	}
	return &item, nil
}

// File downloads the raw bytes of an attachment item.
func (c *Client) File(ctx context.Context, itemKey string) ([]byte, error) {
	path := fmt.Sprintf("/users/%s/items/%s/file", c.LibraryID, url.PathEscape(itemKey))

	resp, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading file %s: %w", itemKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file %s: HTTP %d", itemKey, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// getJSON issues a GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// get issues an authenticated GET with 429-retry handling.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	base := c.BaseURL
	if base == "" {
		base = apiBase
	}
	reqURL := base + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", "3")
	if c.APIKey != "" {
		req.Header.Set("Zotero-API-Key", c.APIKey)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return httputil.DoWithRetry(ctx, c.HTTP, req, 0)
}
