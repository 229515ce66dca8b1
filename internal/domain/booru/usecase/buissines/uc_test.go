package buissines

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/booru-search-bot/internal/domain/booru/access"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/dto"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/entities"
	"github.com/yourusername/booru-search-bot/internal/domain/booru/search"
)

// fakeRepo serves one configurable settings row
type fakeRepo struct {
	row *entities.UserSettings

	updatedSource     string
	updatedSubscriber *bool
}

func (f *fakeRepo) Get(_ context.Context, userID int64) (*entities.UserSettings, error) {
	if f.row != nil {
		return f.row, nil
	}
	return &entities.UserSettings{ID: userID, Source: "danbooru"}, nil
}

func (f *fakeRepo) Upsert(context.Context, *entities.UserSettings) error { return nil }

func (f *fakeRepo) UpdateSource(_ context.Context, _ int64, source string) error {
	f.updatedSource = source
	return nil
}

func (f *fakeRepo) UpdateSubscriber(_ context.Context, _ int64, subscriber bool) error {
	f.updatedSubscriber = &subscriber
	return nil
}

func (f *fakeRepo) UpdateAutoSend(context.Context, int64, string, string, string) error { return nil }
func (f *fakeRepo) ClearAutoSend(context.Context, int64) error                          { return nil }

func (f *fakeRepo) ListAutoSend(context.Context) ([]entities.UserSettings, error) {
	if f.row != nil && f.row.HasAutoSend() {
		return []entities.UserSettings{*f.row}, nil
	}
	return nil, nil
}

// fakeScheduler records registrations
type fakeScheduler struct {
	registered map[int64]string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{registered: make(map[int64]string)}
}

func (f *fakeScheduler) Register(userID int64, cronSpec string, _ func()) error {
	f.registered[userID] = cronSpec
	return nil
}

func (f *fakeScheduler) Unregister(userID int64) {
	delete(f.registered, userID)
}

// fakeSender captures outgoing messages
type fakeSender struct {
	messages []string
	photos   []string
	captions []string
}

func (f *fakeSender) SendMessage(_ context.Context, _ int64, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSender) SendPhoto(_ context.Context, _ int64, photoURL, caption string) error {
	f.photos = append(f.photos, photoURL)
	f.captions = append(f.captions, caption)
	return nil
}

// rewriteTransport redirects every request to the test server and counts hits
type rewriteTransport struct {
	target *url.URL
	hits   atomic.Int64
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.hits.Add(1)
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

type ucFixture struct {
	uc        *UseCase
	repo      *fakeRepo
	scheduler *fakeScheduler
	sender    *fakeSender
	transport *rewriteTransport
}

func newFixture(t *testing.T, handler http.HandlerFunc) *ucFixture {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	transport := &rewriteTransport{target: target}
	searcher := search.NewClientWithHTTP(&http.Client{Transport: transport}, zerolog.Nop())

	repo := &fakeRepo{}
	scheduler := newFakeScheduler()
	sender := &fakeSender{}

	uc := NewUseCase(repo, searcher, access.NewChecker(repo), scheduler, zerolog.Nop())
	uc.SetSender(sender)

	return &ucFixture{uc: uc, repo: repo, scheduler: scheduler, sender: sender, transport: transport}
}

func threePostsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte(`[
		{"id": 1, "file_url": "https://cdn/1.jpg", "preview_file_url": "https://cdn/1_s.jpg", "tag_string_artist": "a"},
		{"id": 2, "file_url": "https://cdn/2.jpg", "tag_string_artist": "b"},
		{"id": 3, "file_url": "https://cdn/3.jpg", "tag_string_artist": "c"}
	]`))
}

func TestInlineSearchEmptyQueryNoAPICall(t *testing.T) {
	f := newFixture(t, threePostsHandler)

	resp, err := f.uc.InlineSearch(context.Background(), &dto.InlineSearchRequest{UserID: 1, Query: ""})
	require.NoError(t, err)

	assert.Empty(t, resp.Items)
	assert.Equal(t, infoEnterTagsTitle, resp.InfoTitle)
	assert.Equal(t, int64(0), f.transport.hits.Load(), "empty query must not hit the backend")
}

func TestInlineSearchFirstPage(t *testing.T) {
	var gotPage string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		threePostsHandler(w, r)
	})

	resp, err := f.uc.InlineSearch(context.Background(), &dto.InlineSearchRequest{UserID: 1, Query: "cat", Offset: ""})
	require.NoError(t, err)

	require.Len(t, resp.Items, 3)
	assert.Equal(t, "1", gotPage)
	assert.Equal(t, "2", resp.NextOffset)
	assert.Equal(t, "https://cdn/1.jpg", resp.Items[0].PhotoURL)
	assert.Equal(t, "https://cdn/1_s.jpg", resp.Items[0].ThumbURL)
	assert.Equal(t, "Artist: a", resp.Items[0].Caption)
}

func TestInlineSearchSecondPage(t *testing.T) {
	var gotPage string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		w.Write([]byte(`[]`))
	})

	resp, err := f.uc.InlineSearch(context.Background(), &dto.InlineSearchRequest{UserID: 1, Query: "cat", Offset: "2"})
	require.NoError(t, err)

	assert.Equal(t, "2", gotPage)
	assert.Equal(t, infoNoResultsTitle, resp.InfoTitle)
}

func TestInlineSearchRestrictedSourceDenied(t *testing.T) {
	f := newFixture(t, threePostsHandler)
	f.repo.row = &entities.UserSettings{ID: 1, Source: "rule34", IsSubscriber: false}

	resp, err := f.uc.InlineSearch(context.Background(), &dto.InlineSearchRequest{UserID: 1, Query: "cat"})
	require.NoError(t, err)

	assert.Equal(t, infoNoAccessTitle, resp.InfoTitle)
	assert.Equal(t, int64(0), f.transport.hits.Load())
}

func TestInlineSearchBackendDownIsNothingFound(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	resp, err := f.uc.InlineSearch(context.Background(), &dto.InlineSearchRequest{UserID: 1, Query: "cat"})
	require.NoError(t, err)
	assert.Equal(t, infoNoResultsTitle, resp.InfoTitle)
}

func TestSetSourceDeniedForRestricted(t *testing.T) {
	f := newFixture(t, threePostsHandler)

	resp, err := f.uc.SetSource(context.Background(), 1, "e621")
	require.NoError(t, err)
	assert.Equal(t, infoNoAccess, resp.Message)
	assert.Empty(t, f.repo.updatedSource)
}

func TestSetSourceAllowed(t *testing.T) {
	f := newFixture(t, threePostsHandler)

	_, err := f.uc.SetSource(context.Background(), 1, "e926")
	require.NoError(t, err)
	assert.Equal(t, "e926", f.repo.updatedSource)
}

func TestToggleSubscription(t *testing.T) {
	f := newFixture(t, threePostsHandler)

	_, err := f.uc.ToggleSubscription(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, f.repo.updatedSubscriber)
	assert.True(t, *f.repo.updatedSubscriber)
}

func autoSendRow(source string, subscriber bool) *entities.UserSettings {
	timeSpec := "00 21 * * *"
	tags := "cat ears"
	return &entities.UserSettings{
		ID:             1,
		Source:         "danbooru",
		IsSubscriber:   subscriber,
		AutoSendTime:   &timeSpec,
		AutoSendSource: &source,
		AutoSendTags:   &tags,
	}
}

func TestDeliverScheduledSendsFirstPost(t *testing.T) {
	f := newFixture(t, threePostsHandler)
	f.repo.row = autoSendRow("danbooru", false)

	f.uc.DeliverScheduled(context.Background(), 1)

	require.Len(t, f.sender.photos, 1)
	assert.Equal(t, "https://cdn/1.jpg", f.sender.photos[0])
	assert.Equal(t, "Artist: a", f.sender.captions[0])
}

func TestDeliverScheduledSkipsOnLapsedAccess(t *testing.T) {
	f := newFixture(t, threePostsHandler)
	// configured while subscribed, subscription lapsed since
	f.repo.row = autoSendRow("rule34", false)

	f.uc.DeliverScheduled(context.Background(), 1)

	assert.Empty(t, f.sender.photos)
	assert.Equal(t, int64(0), f.transport.hits.Load())
}

func TestDeliverScheduledSkipsOnEmptyResult(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})
	f.repo.row = autoSendRow("danbooru", false)

	f.uc.DeliverScheduled(context.Background(), 1)

	assert.Empty(t, f.sender.photos)
}

func TestDeliverScheduledUnregistersClearedSchedule(t *testing.T) {
	f := newFixture(t, threePostsHandler)
	f.scheduler.registered[1] = "00 21 * * *"

	f.uc.DeliverScheduled(context.Background(), 1)

	assert.Empty(t, f.scheduler.registered)
	assert.Empty(t, f.sender.photos)
}

func TestRestoreSchedules(t *testing.T) {
	f := newFixture(t, threePostsHandler)
	f.repo.row = autoSendRow("danbooru", false)

	require.NoError(t, f.uc.RestoreSchedules(context.Background()))
	assert.Equal(t, "00 21 * * *", f.scheduler.registered[1])
}

func TestNormalizeOffset(t *testing.T) {
	assert.Equal(t, 1, NormalizeOffset(""))
	assert.Equal(t, 1, NormalizeOffset("0"))
	assert.Equal(t, 1, NormalizeOffset("garbage"))
	assert.Equal(t, 1, NormalizeOffset("-3"))
	assert.Equal(t, 2, NormalizeOffset("2"))
}
