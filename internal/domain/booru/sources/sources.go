// Package sources contains the static catalog of booru backends.
// Every backend is described by a Descriptor capability record: how to
// build a paged query, how to unwrap the response envelope, and how to
// render attribution for a post. Response shapes differ per backend
// (bare array vs. enveloped object vs. differing tag structures), so the
// differences live here and nowhere else.
package sources

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

// ItemsPerPage is the page size requested from every backend
const ItemsPerPage = 10

// Descriptor describes one booru backend
type Descriptor struct {
	Key         string
	DisplayName string
	Endpoint    string

	// BuildQuery maps a tag string and a 1-based page number to
	// backend-specific query parameters, including the backend's
	// implicit content-rating filter.
	BuildQuery func(tags string, page int) url.Values

	// ParseResults extracts the post list from the backend envelope.
	// An empty or absent list yields an empty slice, never an error.
	ParseResults func(body []byte) ([]entities.Post, error)

	// RenderCaption formats attribution text from backend-specific fields
	RenderCaption func(post entities.Post) string

	// Restricted marks sources that only subscribers may query
	Restricted bool

	// ExtraHeaders holds static headers the backend requires
	ExtraHeaders map[string]string
}

// booruUserAgent identifies the bot to backends that require it
const booruUserAgent = "BooruSearchBot/1.0 (by yourusername)"

var registry = map[string]*Descriptor{
	"danbooru": {
		Key:         "danbooru",
		DisplayName: "Danbooru",
		Endpoint:    "https://danbooru.donmai.us/posts.json",
		BuildQuery: func(tags string, page int) url.Values {
			return url.Values{
				// rating:g keeps results general-audience regardless of user tags
				"tags":  {tags + " rating:g"},
				"limit": {strconv.Itoa(ItemsPerPage)},
				"page":  {strconv.Itoa(page)},
			}
		},
		ParseResults:  parseDanbooru,
		RenderCaption: captionDanbooru,
	},
	"e621": {
		Key:         "e621",
		DisplayName: "e621",
		Endpoint:    "https://e621.net/posts.json",
		BuildQuery: func(tags string, page int) url.Values {
			return url.Values{
				"tags":  {tags},
				"limit": {strconv.Itoa(ItemsPerPage)},
				"page":  {strconv.Itoa(page)},
			}
		},
		ParseResults:  parseE621,
		RenderCaption: captionE621,
		Restricted:    true,
		ExtraHeaders:  map[string]string{"User-Agent": booruUserAgent},
	},
	"e926": {
		Key:         "e926",
		DisplayName: "e926",
		Endpoint:    "https://e621.net/posts.json",
		BuildQuery: func(tags string, page int) url.Values {
			return url.Values{
				"tags":  {tags + " rating:safe"},
				"limit": {strconv.Itoa(ItemsPerPage)},
				"page":  {strconv.Itoa(page)},
			}
		},
		ParseResults:  parseE621,
		RenderCaption: captionE621,
		ExtraHeaders:  map[string]string{"User-Agent": booruUserAgent},
	},
	"rule34": {
		Key:         "rule34",
		DisplayName: "Rule34",
		Endpoint:    "https://api.rule34.xxx/index.php",
		BuildQuery: func(tags string, page int) url.Values {
			return url.Values{
				"page":  {"dapi"},
				"s":     {"post"},
				"q":     {"index"},
				"json":  {"1"},
				"tags":  {tags},
				"pid":   {strconv.Itoa(page)},
				"limit": {strconv.Itoa(ItemsPerPage)},
			}
		},
		ParseResults:  parseRule34,
		RenderCaption: captionRule34,
		Restricted:    true,
	},
}

// displayOrder fixes the order sources appear in keyboards and menus
var displayOrder = []string{"danbooru", "e926", "e621", "rule34"}

// DefaultKey is the source every new user starts with
const DefaultKey = "danbooru"

// Get returns the descriptor for a source key
func Get(key string) (*Descriptor, error) {
	desc, ok := registry[key]
	if !ok {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("source %q is not registered", key))
	}
	return desc, nil
}

// All returns all descriptors in stable display order
func All() []*Descriptor {
	descs := make([]*Descriptor, 0, len(displayOrder))
	for _, key := range displayOrder {
		descs = append(descs, registry[key])
	}
	return descs
}

// danbooru returns a bare JSON array of posts
type danbooruPost struct {
	ID              int64  `json:"id"`
	FileURL         string `json:"file_url"`
	PreviewFileURL  string `json:"preview_file_url"`
	TagStringArtist string `json:"tag_string_artist"`
}

func parseDanbooru(body []byte) ([]entities.Post, error) {
	var raw []danbooruPost
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode danbooru response: %w", err)
		}
	}

	posts := make([]entities.Post, 0, len(raw))
	for _, p := range raw {
		if p.FileURL == "" {
			continue
		}
		posts = append(posts, entities.Post{
			ID:         p.ID,
			FileURL:    p.FileURL,
			PreviewURL: previewOrFile(p.PreviewFileURL, p.FileURL),
			Caption:    entities.CaptionSource{Artist: p.TagStringArtist},
		})
	}
	return posts, nil
}

func captionDanbooru(post entities.Post) string {
	artist := post.Caption.Artist
	if artist == "" {
		artist = "Unknown"
	}
	return fmt.Sprintf("Artist: %s", artist)
}

// e621 and e926 wrap posts in an object and use structured tags
type e621Envelope struct {
	Posts []e621Post `json:"posts"`
}

type e621Post struct {
	ID   int64 `json:"id"`
	File struct {
		URL string `json:"url"`
	} `json:"file"`
	Preview struct {
		URL string `json:"url"`
	} `json:"preview"`
	Tags struct {
		Artist []string `json:"artist"`
	} `json:"tags"`
}

func parseE621(body []byte) ([]entities.Post, error) {
	var envelope e621Envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decode e621 response: %w", err)
		}
	}

	posts := make([]entities.Post, 0, len(envelope.Posts))
	for _, p := range envelope.Posts {
		if p.File.URL == "" {
			continue
		}
		posts = append(posts, entities.Post{
			ID:         p.ID,
			FileURL:    p.File.URL,
			PreviewURL: previewOrFile(p.Preview.URL, p.File.URL),
			Caption:    entities.CaptionSource{Artists: p.Tags.Artist},
		})
	}
	return posts, nil
}

func captionE621(post entities.Post) string {
	artist := strings.Join(post.Caption.Artists, ", ")
	if artist == "" {
		artist = "Unknown"
	}
	return fmt.Sprintf("Artist: %s", artist)
}

// rule34 returns a bare JSON array with flat tag strings and an owner field
type rule34Post struct {
	ID         int64  `json:"id"`
	FileURL    string `json:"file_url"`
	PreviewURL string `json:"preview_url"`
	Owner      string `json:"owner"`
	Tags       string `json:"tags"`
}

func parseRule34(body []byte) ([]entities.Post, error) {
	var raw []rule34Post
	if len(body) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode rule34 response: %w", err)
		}
	}

	posts := make([]entities.Post, 0, len(raw))
	for _, p := range raw {
		if p.FileURL == "" {
			continue
		}
		posts = append(posts, entities.Post{
			ID:         p.ID,
			FileURL:    p.FileURL,
			PreviewURL: previewOrFile(p.PreviewURL, p.FileURL),
			Caption:    entities.CaptionSource{Owner: p.Owner, Tags: p.Tags},
		})
	}
	return posts, nil
}

func captionRule34(post entities.Post) string {
	owner := post.Caption.Owner
	if owner == "" {
		owner = "Unknown"
	}
	return fmt.Sprintf("Artist: %s\nTags: %s", owner, post.Caption.Tags)
}

func previewOrFile(preview, file string) string {
	if preview != "" {
		return preview
	}
	return file
}
