package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

// rewriteTransport redirects every request to the test server so the
// registry's real endpoints are never hit
type rewriteTransport struct {
	target *url.URL
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	httpClient := &http.Client{Transport: &rewriteTransport{target: target}}
	return NewClientWithHTTP(httpClient, zerolog.Nop())
}

func TestSearchUnknownSource(t *testing.T) {
	client := NewClient(zerolog.Nop())

	_, err := client.Search(context.Background(), "nosuch", "cat", 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownSourceError(err))
}

func TestSearchSuccess(t *testing.T) {
	var gotQuery url.Values
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[
			{"id": 1, "file_url": "https://cdn/1.jpg", "tag_string_artist": "a"},
			{"id": 2, "file_url": "https://cdn/2.jpg"},
			{"id": 3, "file_url": "https://cdn/3.jpg"}
		]`))
	})

	page, err := client.Search(context.Background(), "danbooru", "cat", 1)
	require.NoError(t, err)

	assert.Len(t, page.Posts, 3)
	assert.Equal(t, 2, page.NextPage)
	assert.Equal(t, "cat rating:g", gotQuery.Get("tags"))
	assert.Equal(t, "1", gotQuery.Get("page"))
}

func TestSearchSecondPage(t *testing.T) {
	var gotPage string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		w.Write([]byte(`[]`))
	})

	page, err := client.Search(context.Background(), "danbooru", "cat", 2)
	require.NoError(t, err)

	assert.Equal(t, "2", gotPage)
	assert.Empty(t, page.Posts)
	// NextPage advances even for an empty page, callers stop paginating
	assert.Equal(t, 3, page.NextPage)
}

func TestSearchFiltersFilelessPosts(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 1, "file_url": "https://cdn/1.jpg"},
			{"id": 2}
		]`))
	})

	page, err := client.Search(context.Background(), "danbooru", "cat", 1)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, int64(1), page.Posts[0].ID)
}

func TestSearchExtraHeaders(t *testing.T) {
	var gotUserAgent string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`{"posts": []}`))
	})

	_, err := client.Search(context.Background(), "e621", "cat", 1)
	require.NoError(t, err)
	assert.Contains(t, gotUserAgent, "BooruSearchBot")
}

func TestSearchTransportError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		// a client error is unrecoverable, no retries burn test time
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Search(context.Background(), "danbooru", "cat", 1)
	require.Error(t, err)
	require.True(t, pkgerrors.IsTransportError(err))

	var transportErr *pkgerrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "danbooru", transportErr.Source)
}

func TestSearchMalformedBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.Search(context.Background(), "danbooru", "cat", 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsTransportError(err))
}
