package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/request"
)

const testToken = "test-access-token"

// newTestClient points a gateway at a stub server.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	return New(cfg, request.StaticToken(testToken), opts...), srv
}

type recordingHandler struct {
	calls atomic.Int32
}

func (h *recordingHandler) HandleUnauthorized(context.Context) {
	h.calls.Add(1)
}

func TestClient_HeaderContract(t *testing.T) {
	var got http.Header
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"saves":[]}`))
	})

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{})
	require.NoError(t, err)

	assert.Equal(t, "Bearer "+testToken, got.Get("Authorization"))
	assert.Equal(t, config.Default().APIKey, got.Get("apikey"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "cli", got.Get("x-platform"))
	assert.NotEmpty(t, got.Get("x-app-version"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestClient_RequestIDsAreUnique(t *testing.T) {
	var ids []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-Id"))
		_, _ = w.Write([]byte(`{"saves":[]}`))
	})

	ctx := context.Background()
	_, err := client.FetchLibrary(ctx, LibraryFilter{})
	require.NoError(t, err)
	_, err = client.FetchLibrary(ctx, LibraryFilter{})
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestClient_UnauthorizedNotifiesHandlerOnce(t *testing.T) {
	handler := &recordingHandler{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithUnauthorizedHandler(handler))

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), handler.calls.Load())
}

func TestClient_UnauthorizedWithoutHandler(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{})

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
}

func TestClient_NetworkError(t *testing.T) {
	client, srv := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	srv.Close()

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{})

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestClient_DecodingError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"saves": "not-an-array"}`))
	})

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{})

	var decErr *DecodingError
	assert.ErrorAs(t, err, &decErr)
}

func TestFetchLibrary_DefaultFilterOmitsOptionalParams(t *testing.T) {
	var query map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"saves":[]}`))
	})

	_, err := client.FetchLibrary(context.Background(), LibraryFilter{Platform: "all"})
	require.NoError(t, err)

	assert.Equal(t, []string{"50"}, query["limit"])
	assert.Equal(t, []string{"0"}, query["offset"])
	assert.NotContains(t, query, "q")
	assert.NotContains(t, query, "platform", `platform "all" must be omitted`)
	assert.NotContains(t, query, "collection")
}

func TestFetchLibrary_FullFilter(t *testing.T) {
	var query map[string][]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"saves":[{"id":"s1","url":"https://v.test","platform":"youtube"}],"total":1}`))
	})

	resp, err := client.FetchLibrary(context.Background(), LibraryFilter{
		Query:        "cooking videos",
		Platform:     "youtube",
		CollectionID: "col-1",
		Limit:        10,
		Offset:       20,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"cooking videos"}, query["q"])
	assert.Equal(t, []string{"youtube"}, query["platform"])
	assert.Equal(t, []string{"col-1"}, query["collection"])
	assert.Equal(t, []string{"10"}, query["limit"])
	assert.Equal(t, []string{"20"}, query["offset"])
	require.Len(t, resp.Saves, 1)
	assert.Equal(t, "s1", resp.Saves[0].ID)
}

// jsonDecode reads a request body into v.
func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func TestSmartSearch_PlatformOmittedWhenAll(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &body))
		_, _ = w.Write([]byte(`{"saves":[],"total":0,"query":"q"}`))
	})

	_, err := client.SmartSearch(context.Background(), "recipes", "all", 0)
	require.NoError(t, err)

	assert.Equal(t, "recipes", body["q"])
	assert.Equal(t, float64(30), body["limit"])
	assert.NotContains(t, body, "platform")
}

func TestIngest(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, jsonDecode(r, &body))
		_, _ = w.Write([]byte(`{"save":{"id":"s1","url":"https://v.test","platform":"tiktok","title":"A clip"}}`))
	})

	resp, err := client.Ingest(context.Background(), "https://v.test")
	require.NoError(t, err)

	assert.Equal(t, "https://v.test", body["url"])
	require.NotNil(t, resp.Save)
	assert.Equal(t, "A clip", resp.Save.Title)
}

func TestDeleteSave_SendsIDQuery(t *testing.T) {
	var method, id string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		id = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteSave(context.Background(), "s1"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "s1", id)
}

func TestToggleFavorite(t *testing.T) {
	var method string
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		require.NoError(t, jsonDecode(r, &body))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.ToggleFavorite(context.Background(), "s1", true))
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "s1", body["id"])
	assert.Equal(t, true, body["is_favorite"])
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", ErrUnauthorized, "Session expired. Please sign in again."},
		{"server", &ServerError{StatusCode: 503}, "Server error (503). Please try again."},
		{"network", &NetworkError{Err: errors.New("refused")}, "Couldn't connect. Check your internet and try again."},
		{"decoding", &DecodingError{Err: errors.New("bad json")}, "Something went wrong. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
