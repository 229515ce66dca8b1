package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

func TestGetUnknownSource(t *testing.T) {
	_, err := Get("gelbooru")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFoundError(err))
}

func TestAllStableOrder(t *testing.T) {
	descs := All()
	require.Len(t, descs, 4)

	keys := make([]string, len(descs))
	for i, desc := range descs {
		keys[i] = desc.Key
	}
	assert.Equal(t, []string{"danbooru", "e926", "e621", "rule34"}, keys)
}

func TestBuildQuerySafetyFilters(t *testing.T) {
	tests := []struct {
		source string
		tags   string
		want   string
	}{
		{source: "danbooru", tags: "cat_ears", want: "cat_ears rating:g"},
		{source: "e926", tags: "cat_ears", want: "cat_ears rating:safe"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			desc, err := Get(tt.source)
			require.NoError(t, err)

			params := desc.BuildQuery(tt.tags, 1)
			assert.Equal(t, tt.want, params.Get("tags"))
		})
	}
}

func TestBuildQueryPagination(t *testing.T) {
	danbooru, err := Get("danbooru")
	require.NoError(t, err)
	assert.Equal(t, "3", danbooru.BuildQuery("cat", 3).Get("page"))

	rule34, err := Get("rule34")
	require.NoError(t, err)
	params := rule34.BuildQuery("cat", 3)
	assert.Equal(t, "3", params.Get("pid"))
	assert.Equal(t, "dapi", params.Get("page"))
	assert.Equal(t, "1", params.Get("json"))
}

func TestE621Headers(t *testing.T) {
	desc, err := Get("e621")
	require.NoError(t, err)
	assert.NotEmpty(t, desc.ExtraHeaders["User-Agent"])
	assert.True(t, desc.Restricted)
}

func TestParseResultsEmptyPayload(t *testing.T) {
	for _, key := range []string{"danbooru", "e621", "e926", "rule34"} {
		t.Run(key, func(t *testing.T) {
			desc, err := Get(key)
			require.NoError(t, err)

			posts, err := desc.ParseResults(nil)
			require.NoError(t, err)
			assert.NotNil(t, posts)
			assert.Empty(t, posts)

			empty := []byte(`[]`)
			if key == "e621" || key == "e926" {
				empty = []byte(`{}`)
			}
			posts, err = desc.ParseResults(empty)
			require.NoError(t, err)
			assert.Empty(t, posts)
		})
	}
}

func TestParseDanbooruFiltersFilelessPosts(t *testing.T) {
	desc, err := Get("danbooru")
	require.NoError(t, err)

	body := []byte(`[
		{"id": 1, "file_url": "https://cdn/1.jpg", "preview_file_url": "https://cdn/1_s.jpg", "tag_string_artist": "artist_a"},
		{"id": 2, "tag_string_artist": "artist_b"},
		{"id": 3, "file_url": "https://cdn/3.jpg"}
	]`)

	posts, err := desc.ParseResults(body)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, int64(1), posts[0].ID)
	assert.Equal(t, "https://cdn/1_s.jpg", posts[0].PreviewURL)
	// missing preview falls back to the file URL
	assert.Equal(t, "https://cdn/3.jpg", posts[1].PreviewURL)
}

func TestParseE621Envelope(t *testing.T) {
	desc, err := Get("e621")
	require.NoError(t, err)

	body := []byte(`{"posts": [
		{"id": 10, "file": {"url": "https://cdn/10.png"}, "preview": {"url": "https://cdn/10_s.png"}, "tags": {"artist": ["a", "b"]}},
		{"id": 11, "file": {"url": ""}, "tags": {"artist": ["c"]}}
	]}`)

	posts, err := desc.ParseResults(body)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(10), posts[0].ID)
	assert.Equal(t, "Artist: a, b", desc.RenderCaption(posts[0]))
}

func TestParseRule34(t *testing.T) {
	desc, err := Get("rule34")
	require.NoError(t, err)

	body := []byte(`[
		{"id": 42, "file_url": "https://cdn/42.jpg", "preview_url": "https://cdn/42_s.jpg", "owner": "someone", "tags": "cat_ears solo"}
	]`)

	posts, err := desc.ParseResults(body)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Artist: someone\nTags: cat_ears solo", desc.RenderCaption(posts[0]))
}

func TestCaptionUnknownFallbacks(t *testing.T) {
	danbooru, err := Get("danbooru")
	require.NoError(t, err)
	posts, err := danbooru.ParseResults([]byte(`[{"id": 1, "file_url": "https://cdn/1.jpg"}]`))
	require.NoError(t, err)
	assert.Equal(t, "Artist: Unknown", danbooru.RenderCaption(posts[0]))

	e621, err := Get("e621")
	require.NoError(t, err)
	posts, err = e621.ParseResults([]byte(`{"posts": [{"id": 2, "file": {"url": "https://cdn/2.jpg"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Artist: Unknown", e621.RenderCaption(posts[0]))
}
