package share

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/keystore"
)

const sharedToken = "shared-access-token"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *keystore.MemoryStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL

	store := keystore.NewMemoryStore()
	require.NoError(t, store.Save(keystore.AccessTokenKey, sharedToken))
	return New(cfg, store), store
}

func TestIngest_Saved(t *testing.T) {
	var got http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"save":{"id":"s1","title":"A cooking video"}}`))
	})

	result, err := client.Ingest(context.Background(), "https://v.test/clip")
	require.NoError(t, err)

	assert.False(t, result.AlreadySaved)
	assert.Equal(t, "A cooking video", result.Title)

	// Same header contract as the main gateway, duplicated by design.
	assert.Equal(t, "Bearer "+sharedToken, got.Get("Authorization"))
	assert.Equal(t, config.Default().APIKey, got.Get("apikey"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("x-platform"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestIngest_TitleFallsBackToLink(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"save":{"id":"s1"}}`))
	})

	result, err := client.Ingest(context.Background(), "https://v.test/clip")
	require.NoError(t, err)
	assert.Equal(t, "Link", result.Title)
}

func TestIngest_TitleTruncated(t *testing.T) {
	long := strings.Repeat("é", 80)
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"save":{"title":"` + long + `"}}`))
	})

	result, err := client.Ingest(context.Background(), "https://v.test/clip")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), result.Title, "truncation counts runes, not bytes")
}

func TestIngest_AlreadySavedIsNotAnError(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	result, err := client.Ingest(context.Background(), "https://v.test/clip")
	require.NoError(t, err)
	assert.True(t, result.AlreadySaved)

	token, ok := store.Retrieve(keystore.AccessTokenKey)
	require.True(t, ok, "409 must not alter the persisted token")
	assert.Equal(t, sharedToken, token)
}

func TestIngest_NotSignedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request should be sent without a token")
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	client := New(cfg, keystore.NewMemoryStore())

	_, err := client.Ingest(context.Background(), "https://v.test/clip")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestIngest_ServerErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"server message surfaced", `{"error":"URL not supported"}`, "URL not supported"},
		{"already-saved message rewritten", `{"error":"Already saved"}`, "Already in your library!"},
		{"empty body", ``, "Save failed"},
		{"unparseable body", `<html>`, "Save failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Ingest(context.Background(), "https://v.test/clip")
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"plain https", "https://v.test/clip", "https://v.test/clip", true},
		{"plain http", "http://v.test/clip", "http://v.test/clip", true},
		{"surrounding whitespace", "  https://v.test/clip\n", "https://v.test/clip", true},
		{"no url", "check this out", "", false},
		{"scheme not at start", "see https://v.test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractURL(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplayHost(t *testing.T) {
	assert.Equal(t, "v.test", DisplayHost("https://v.test/clip?x=1"))
	assert.Equal(t, "not a url", DisplayHost("not a url"))
}
