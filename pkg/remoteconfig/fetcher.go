// Package remoteconfig fetches feature flags and app directives from the
// unauthenticated config endpoint, once per process start. A failed fetch is
// never fatal: the caller gets the compiled-in defaults and the app proceeds.
package remoteconfig

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/request"
)

const defaultMinimumVersion = "1.0.0"

// FeatureFlag gates a feature for a fraction of users.
type FeatureFlag struct {
	Enabled bool `json:"enabled"`
	Rollout int  `json:"rollout"`
}

// DesignTokens carries server-driven styling values. Typography and spacing
// values are mixed-type (sizes as numbers, weights and families as strings).
type DesignTokens struct {
	Colors         map[string]string `json:"colors,omitempty"`
	PlatformColors map[string]string `json:"platform_colors,omitempty"`
	Typography     map[string]Scalar `json:"typography,omitempty"`
	Spacing        map[string]Scalar `json:"spacing,omitempty"`
}

// APIVersionInfo announces the backend's API versioning state.
type APIVersionInfo struct {
	Current          string   `json:"current,omitempty"`
	MinimumSupported string   `json:"minimum_supported,omitempty"`
	Deprecated       []string `json:"deprecated,omitempty"`
}

// Config is the result of a fetch. Loaded is true once a fetch attempt has
// completed, success or not — it means "stop waiting on config", never
// "config succeeded".
type Config struct {
	Features       map[string]FeatureFlag
	ForceUpdate    bool
	MinimumVersion string
	DesignTokens   *DesignTokens
	APIVersion     *APIVersionInfo
	Loaded         bool
}

// Defaults returns the configuration used when no fetch has succeeded: all
// flags disabled, no forced update.
func Defaults() Config {
	return Config{
		Features:       map[string]FeatureFlag{},
		MinimumVersion: defaultMinimumVersion,
	}
}

// IsEnabled reports whether a feature flag is on. Unknown flags are off.
func (c Config) IsEnabled(flag string) bool {
	return c.Features[flag].Enabled
}

// UpdateRequired reports whether the given app version may not proceed:
// either the backend forces an update outright or the version is below the
// announced minimum.
func (c Config) UpdateRequired(appVersion string) bool {
	if c.ForceUpdate {
		return true
	}
	return compareVersions(appVersion, c.MinimumVersion) < 0
}

// configResponse is the endpoint's wire shape.
type configResponse struct {
	Platform       string                 `json:"platform"`
	AppVersion     string                 `json:"app_version,omitempty"`
	ForceUpdate    bool                   `json:"force_update"`
	MinimumVersion string                 `json:"minimum_version,omitempty"`
	Features       map[string]FeatureFlag `json:"features"`
	DesignTokens   *DesignTokens          `json:"design_tokens,omitempty"`
	APIVersion     *APIVersionInfo        `json:"api_version,omitempty"`
}

// Fetcher performs the one-shot config fetch.
type Fetcher struct {
	http      *http.Client
	builder   request.Builder
	configURL string
	log       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.http = hc }
}

// WithLogger replaces the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Fetcher) { f.log = log }
}

// NewFetcher creates a config fetcher from the client configuration.
func NewFetcher(cfg config.Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		http: &http.Client{Timeout: cfg.HTTPTimeout},
		builder: request.Builder{
			APIKey:     cfg.APIKey,
			Platform:   cfg.Platform,
			AppVersion: cfg.AppVersion,
		},
		configURL: cfg.ConfigURL(),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs one GET against the config endpoint. It always returns a
// usable Config with Loaded set: any non-200 status, transport failure, or
// parse failure degrades to Defaults and is logged, never surfaced.
func (f *Fetcher) Fetch(ctx context.Context) Config {
	cfg := Defaults()
	cfg.Loaded = true

	// No auth: the config endpoint is public, identified only by platform
	// and version headers.
	req, err := f.builder.New(ctx, http.MethodGet, f.configURL, nil, "")
	if err != nil {
		f.log.Warn("config request build failed", "error", err)
		return cfg
	}

	resp, err := f.http.Do(req)
	if err != nil {
		f.log.Warn("config fetch failed", "error", err)
		return cfg
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Warn("config fetch returned non-200", "status", resp.StatusCode)
		return cfg
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warn("config read failed", "error", err)
		return cfg
	}

	var parsed configResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		f.log.Warn("config parse failed", "error", err)
		return cfg
	}

	if parsed.Features != nil {
		cfg.Features = parsed.Features
	}
	cfg.ForceUpdate = parsed.ForceUpdate
	if parsed.MinimumVersion != "" {
		cfg.MinimumVersion = parsed.MinimumVersion
	}
	cfg.DesignTokens = parsed.DesignTokens
	cfg.APIVersion = parsed.APIVersion
	return cfg
}

// compareVersions orders dotted numeric versions: -1 when a < b, 0 when
// equal, 1 when a > b. Non-numeric segments compare as zero.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}
