package api

import (
	"context"
	"net/http"

	"github.com/yosida95/uritemplate/v3"
)

// LibraryFilter narrows a library listing. Zero values are omitted from the
// request; Platform "all" means no platform filter and is omitted too.
type LibraryFilter struct {
	Query        string
	Platform     string
	CollectionID string
	Limit        int
	Offset       int
}

// defaultLibraryLimit matches the backend's page size.
const defaultLibraryLimit = 50

// FetchLibrary lists saves, newest first, honoring the filter.
func (c *Client) FetchLibrary(ctx context.Context, filter LibraryFilter) (*LibraryResponse, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLibraryLimit
	}

	vars := uritemplate.Values{
		"base":   uritemplate.String(c.libraryURL),
		"limit":  itoa(limit),
		"offset": itoa(filter.Offset),
	}
	if filter.Query != "" {
		vars["q"] = uritemplate.String(filter.Query)
	}
	if filter.Platform != "" && filter.Platform != "all" {
		vars["platform"] = uritemplate.String(filter.Platform)
	}
	if filter.CollectionID != "" {
		vars["collection"] = uritemplate.String(filter.CollectionID)
	}

	data, err := c.do(ctx, http.MethodGet, expand(libraryTmpl, vars), nil)
	if err != nil {
		return nil, err
	}

	var out LibraryResponse
	if err := c.decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// defaultSearchLimit matches the backend's smart-search page size.
const defaultSearchLimit = 30

// SmartSearch runs a natural-language query through the backend's search
// interpreter.
func (c *Client) SmartSearch(ctx context.Context, query, platform string, limit int) (*SmartSearchResponse, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	body := map[string]any{"q": query, "limit": limit}
	if platform != "" && platform != "all" {
		body["platform"] = platform
	}

	data, err := c.do(ctx, http.MethodPost, c.smartSearchURL, body)
	if err != nil {
		return nil, err
	}

	var out SmartSearchResponse
	if err := c.decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest submits a URL for metadata extraction and storage as a save.
func (c *Client) Ingest(ctx context.Context, url string) (*IngestResponse, error) {
	data, err := c.do(ctx, http.MethodPost, c.ingestURL, map[string]string{"url": url})
	if err != nil {
		return nil, err
	}

	var out IngestResponse
	if err := c.decodeInto(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleFavorite marks or unmarks a save as a favorite. Callers apply the
// change optimistically; a failure here must not disturb anything beyond the
// toggle itself.
func (c *Client) ToggleFavorite(ctx context.Context, saveID string, isFavorite bool) error {
	body := map[string]any{"id": saveID, "is_favorite": isFavorite}
	_, err := c.do(ctx, http.MethodPatch, c.libraryURL, body)
	return err
}

// DeleteSave removes a save by ID.
func (c *Client) DeleteSave(ctx context.Context, saveID string) error {
	vars := uritemplate.Values{
		"base": uritemplate.String(c.libraryURL),
		"id":   uritemplate.String(saveID),
	}
	_, err := c.do(ctx, http.MethodDelete, expand(saveByIDTmpl, vars), nil)
	return err
}
