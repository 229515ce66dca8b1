// Package search issues paged queries against booru backends
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/sources"
	pkgerrors "github.com/yourusername/booru-search-bot/pkg/errors"
)

const (
	requestTimeout = 15 * time.Second
	maxAttempts    = 3
	retryDelay     = time.Second
	maxRetryDelay  = 10 * time.Second
)

// ResultPage is one normalized page of search results. NextPage is
// unconditionally page+1, even when Posts is empty; callers halt
// pagination on empty pages themselves.
type ResultPage struct {
	Posts    []entities.Post
	NextPage int
}

// Client performs searches through the source registry's request/parse contract
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new search client
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// NewClientWithHTTP creates a search client with a caller-provided http client
func NewClientWithHTTP(httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Search runs a paged tag query against the given source. Page numbering
// is 1-based; callers normalize a zero or absent offset to page 1 before
// calling. Transport failures and non-2xx statuses come back as a
// TransportError value carrying the source key, never as a panic.
func (c *Client) Search(ctx context.Context, sourceKey, tags string, page int) (*ResultPage, error) {
	desc, err := sources.Get(sourceKey)
	if err != nil {
		return nil, pkgerrors.NewUnknownSourceError(sourceKey)
	}

	body, err := c.fetch(ctx, desc, tags, page)
	if err != nil {
		c.logger.Warn().
			Str("source", sourceKey).
			Str("tags", tags).
			Int("page", page).
			Err(err).
			Msg("Booru request failed")
		return nil, pkgerrors.NewTransportError(sourceKey, err.Error())
	}

	posts, err := desc.ParseResults(body)
	if err != nil {
		c.logger.Error().Str("source", sourceKey).Err(err).Msg("Failed to parse booru response")
		return nil, pkgerrors.NewTransportError(sourceKey, err.Error())
	}

	// parsers already drop fileless posts; keep the invariant here too
	deliverable := posts[:0]
	for _, post := range posts {
		if post.FileURL == "" {
			continue
		}
		deliverable = append(deliverable, post)
	}

	c.logger.Debug().
		Str("source", sourceKey).
		Str("tags", tags).
		Int("page", page).
		Int("posts", len(deliverable)).
		Msg("Booru search completed")

	return &ResultPage{
		Posts:    deliverable,
		NextPage: page + 1,
	}, nil
}

func (c *Client) fetch(ctx context.Context, desc *sources.Descriptor, tags string, page int) ([]byte, error) {
	requestURL := desc.Endpoint + "?" + desc.BuildQuery(tags, page).Encode()

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}

			for key, value := range desc.ExtraHeaders {
				req.Header.Set(key, value)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
				// client errors will not succeed on retry
				return retry.Unrecoverable(fmt.Errorf("HTTP %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			return nil
		},
		retry.Attempts(maxAttempts),
		retry.Delay(retryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info().
				Str("source", desc.Key).
				Uint("attempt", n).
				Err(err).
				Msg("Retrying booru request")
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
