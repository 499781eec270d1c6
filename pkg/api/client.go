// Package api is the gateway to the backend's resource endpoints. Every
// outbound call goes through one chokepoint that attaches the common header
// contract and interprets responses into a single error taxonomy; the typed
// operations are thin wrappers over it.
//
// The gateway never recovers from errors itself. The one side effect it owns
// is notifying the UnauthorizedHandler on a 401; retry and sign-out policy
// live with the session manager.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/yosida95/uritemplate/v3"

	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/request"
)

// Endpoint URL templates (RFC 6570). Undefined query variables drop out of
// the expansion, which is how optional filters stay off the wire.
var (
	libraryTmpl          = uritemplate.MustNew("{+base}{?limit,offset,q,platform,collection}")
	saveByIDTmpl         = uritemplate.MustNew("{+base}{?id}")
	collectionsTmpl      = uritemplate.MustNew("{+base}/collections")
	collectionByIDTmpl   = uritemplate.MustNew("{+base}/collections{?id}")
	collaboratorsTmpl    = uritemplate.MustNew("{+base}/collaborators{?collection_id}")
	collaboratorByIDTmpl = uritemplate.MustNew("{+base}/collaborators{?id}")
)

// UnauthorizedHandler is notified synchronously when any call returns 401.
// The session manager implements it; the gateway itself never retries.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context)
}

// Client is the remote API gateway.
type Client struct {
	http           *http.Client
	builder        request.Builder
	tokens         request.TokenProvider
	onUnauthorized UnauthorizedHandler
	log            *slog.Logger

	libraryURL     string
	ingestURL      string
	smartSearchURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom
// transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUnauthorizedHandler registers the 401 observer. Set exactly once, at
// construction, by the session manager.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) { c.onUnauthorized = h }
}

// WithLogger replaces the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a gateway for the configured backend. tokens supplies the
// bearer token attached to every call.
func New(cfg config.Config, tokens request.TokenProvider, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		builder: request.Builder{
			APIKey:     cfg.APIKey,
			Platform:   cfg.Platform,
			AppVersion: cfg.AppVersion,
		},
		tokens:         tokens,
		log:            slog.Default(),
		libraryURL:     cfg.LibraryURL(),
		ingestURL:      cfg.IngestURL(),
		smartSearchURL: cfg.SmartSearchURL(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one call and interprets the response: transport failure →
// NetworkError, 401 → notify handler then ErrUnauthorized, 5xx →
// ServerError. Anything else returns the body for the caller to decode.
func (c *Client) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	token, _ := c.tokens.AccessToken()
	req, err := c.builder.New(ctx, method, url, body, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized.HandleUnauthorized(ctx)
		}
		return nil, ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	return data, nil
}

// decodeInto unmarshals a response body, classifying failures as
// DecodingError.
func (c *Client) decodeInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		c.log.Warn("response decode failed", "error", err)
		return &DecodingError{Err: err}
	}
	return nil
}

// expand renders a URL template, panicking only on programmer error (the
// templates are compile-time constants).
func expand(tmpl *uritemplate.Template, vars uritemplate.Values) string {
	url, err := tmpl.Expand(vars)
	if err != nil {
		panic(err)
	}
	return url
}

func itoa(n int) uritemplate.Value {
	return uritemplate.String(strconv.Itoa(n))
}
