package request

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBuilder = Builder{
	APIKey:     "anon-key",
	Platform:   "cli",
	AppVersion: "1.2.3",
}

func TestBuilder_HeaderContract(t *testing.T) {
	req, err := testBuilder.New(context.Background(), http.MethodGet, "https://x.test/library", nil, "tok")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "cli", req.Header.Get("x-platform"))
	assert.Equal(t, "1.2.3", req.Header.Get("x-app-version"))
	assert.Nil(t, req.Body)
}

func TestBuilder_EmptyTokenOmitsAuthorization(t *testing.T) {
	req, err := testBuilder.New(context.Background(), http.MethodGet, "https://x.test/config", nil, "")
	require.NoError(t, err)

	_, present := req.Header["Authorization"]
	assert.False(t, present)
}

func TestBuilder_EncodesBody(t *testing.T) {
	body := map[string]string{"url": "https://example.test/v"}
	req, err := testBuilder.New(context.Background(), http.MethodPost, "https://x.test/ingest", body, "tok")
	require.NoError(t, err)

	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://example.test/v"}`, string(data))
}

func TestBuilder_UnencodableBody(t *testing.T) {
	_, err := testBuilder.New(context.Background(), http.MethodPost, "https://x.test/ingest", make(chan int), "tok")
	assert.Error(t, err)
}

func TestStaticToken(t *testing.T) {
	tok, ok := StaticToken("abc").AccessToken()
	require.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = StaticToken("").AccessToken()
	assert.False(t, ok)
}
