// Package share is the ingest client for the share-sheet entry point. It
// runs in a separate process from the main app, so it cannot see the session
// manager's in-memory state: it reads the access token straight from the
// shared credential namespace and performs exactly one ingest call. It never
// signs in and never refreshes — an expired token fails the save and the
// user is directed to open the main app.
package share

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/keystore"
	"github.com/dopoapp/dopo-go/pkg/request"
)

// ErrNotSignedIn reports that no access token exists in the shared
// namespace. The share client must not attempt sign-in itself.
var ErrNotSignedIn = errors.New("not signed in")

const (
	maxTitleRunes   = 50
	fallbackTitle   = "Link"
	genericFailure  = "Save failed"
	alreadyInLib    = "Already in your library!"
	alreadySavedMsg = "Already saved"
)

// Result is the outcome of a successful ingest call. AlreadySaved marks the
// duplicate-link case, which is not a failure.
type Result struct {
	AlreadySaved bool
	Title        string
}

// Client performs one-shot ingests with a read-only view of the shared
// credential store.
type Client struct {
	http      *http.Client
	builder   request.Builder
	store     keystore.Store
	ingestURL string
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger replaces the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a share client reading tokens from store. The store should be
// the shared namespace the main app writes to; this client only retrieves.
func New(cfg config.Config, store keystore.Store, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		builder: request.Builder{
			APIKey:     cfg.APIKey,
			Platform:   cfg.Platform,
			AppVersion: cfg.AppVersion,
		},
		store:     store,
		ingestURL: cfg.IngestURL(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ingestResponse is the slice of the ingest payload the share client needs.
type ingestResponse struct {
	Save *struct {
		Title string `json:"title"`
	} `json:"save,omitempty"`
	Error string `json:"error,omitempty"`
}

// Ingest posts one URL to the ingest endpoint. 200/201 yield a Result with a
// display title, 409 yields the AlreadySaved result, and any other status
// becomes an error carrying the server's message when it sent one.
func (c *Client) Ingest(ctx context.Context, rawURL string) (Result, error) {
	token, ok := c.store.Retrieve(keystore.AccessTokenKey)
	if !ok {
		return Result{}, ErrNotSignedIn
	}

	req, err := c.builder.New(ctx, http.MethodPost, c.ingestURL, map[string]string{"url": rawURL}, token)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("ingest request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("ingest response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return Result{Title: titleFrom(data)}, nil
	case http.StatusConflict:
		return Result{AlreadySaved: true}, nil
	default:
		c.log.Warn("ingest failed", "status", resp.StatusCode)
		return Result{}, errors.New(failureMessage(data))
	}
}

// titleFrom extracts a display title from the ingest payload, truncated for
// the confirmation line.
func titleFrom(data []byte) string {
	var parsed ingestResponse
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Save == nil || parsed.Save.Title == "" {
		return fallbackTitle
	}
	return truncate(parsed.Save.Title, maxTitleRunes)
}

// failureMessage prefers the server's error field over the generic message.
func failureMessage(data []byte) string {
	var parsed ingestResponse
	if err := json.Unmarshal(data, &parsed); err != nil || parsed.Error == "" {
		return genericFailure
	}
	if parsed.Error == alreadySavedMsg {
		return alreadyInLib
	}
	return parsed.Error
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ExtractURL pulls a shareable URL out of arbitrary shared text: the trimmed
// text is accepted when it is an http(s) link, matching how share sheets
// hand over plain-text payloads.
func ExtractURL(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed, true
	}
	return "", false
}

// DisplayHost shortens a URL to its host for status lines, falling back to
// the raw string when it does not parse.
func DisplayHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
