package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/teams"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		FeedBaseURL:        srv.URL + "/matches?date={YYYYMMDD}",
		FeedTimeout:        5 * time.Second,
		FeedRequestsPerMin: 6000,
	}
	registry := teams.NewRegistry(nil, 1500, nil, testLogger())
	return NewClient(cfg, registry, testLogger())
}

func TestFetchDateSubstitutesDateAndDisablesCaching(t *testing.T) {
	var gotQuery, gotCacheControl string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCacheControl = r.Header.Get("Cache-Control")
		w.Write([]byte(`{"leagues":[{"primaryId":47,"name":"Premier League","matches":[` +
			`{"id":1001,"home":{"name":"Arsenal","score":1},"away":{"name":"Chelsea","score":0},` +
			`"status":{"started":true,"liveTime":{"short":"12'","long":"12:30"}}}]}]}`))
	})

	matches, err := c.FetchDate(context.Background(), "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "date=20260831", gotQuery)
	assert.Equal(t, "no-cache", gotCacheControl)

	require.Len(t, matches, 1)
	assert.Equal(t, "1001", matches[0].ID)
	assert.Equal(t, "12'", matches[0].TimeLabel)
	assert.Equal(t, 12, matches[0].Time)
	assert.Equal(t, "2026-08-31", matches[0].Date)
}

func TestFetchDateNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchDate(context.Background(), "2026-08-31")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchDateServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchDate(context.Background(), "2026-08-31")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFetchDateMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := c.FetchDate(context.Background(), "2026-08-31")
	var shapeErr *DataShapeError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestFetchDateUnreachableHost(t *testing.T) {
	cfg := &config.Config{
		FeedBaseURL:        "http://127.0.0.1:1/matches?date={YYYYMMDD}",
		FeedTimeout:        time.Second,
		FeedRequestsPerMin: 6000,
	}
	c := NewClient(cfg, teams.NewRegistry(nil, 1500, nil, testLogger()), testLogger())

	_, err := c.FetchDate(context.Background(), "2026-08-31")
	assert.ErrorIs(t, err, ErrUnavailable)
}
