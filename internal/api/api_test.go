package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skynolimit/topscores/internal/api/handler"
	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/feed"
	"github.com/skynolimit/topscores/internal/interest"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/notify"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/sim"
	"github.com/skynolimit/topscores/internal/store"
	"github.com/skynolimit/topscores/internal/teams"
)

type okTransport struct{}

func (okTransport) Send(context.Context, string, notify.Notification) notify.Result {
	return notify.Result{Succeeded: true}
}

type emptySource struct{}

func (emptySource) FetchDate(context.Context, string) ([]*match.Match, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store, *profile.Cache, *sim.Engine) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		CORSAllowOrigins:             []string{"*"},
		APNBundleID:                  "com.example.topscores",
		NotificationTTL:              time.Hour,
		PredictorGoalChancePerMinute: 0.02,
		PredictorRatingDifferential:  2.0,
		PredictorCleanupInterval:     time.Hour,
		PredictorMaxAge:              time.Hour,
		RefreshTodayInterval:         time.Hour,
		RefreshYdayInterval:          time.Hour,
		RefreshOtherInterval:         time.Hour,
	}

	live := store.New(logger)
	predicted := store.NewTrackingAll(logger)
	profiles := profile.NewCache(nil, logger)
	registry := teams.NewRegistry(nil, 1500, nil, logger)
	index := interest.NewIndex(live, profiles, registry, logger)
	profiles.OnChange(index.RecomputeForUser)
	envelopes := notify.NewMemoryEnvelopeStore()
	dispatcher := notify.NewDispatcher(profiles, envelopes, okTransport{}, cfg, logger)
	t.Cleanup(dispatcher.Stop)
	pipeline := notify.NewPipeline(live, dispatcher, logger)
	refresher := feed.NewRefresher(emptySource{}, live, index, pipeline, cfg, logger)
	t.Cleanup(refresher.Stop)
	engine := sim.NewEngine(live, predicted, notify.NewPipeline(predicted, dispatcher, logger), profiles, cfg, logger)
	t.Cleanup(engine.Stop)

	router := NewRouter(handler.Deps{
		Cfg:        cfg,
		Live:       live,
		Engine:     engine,
		Profiles:   profiles,
		Refresher:  refresher,
		Dispatcher: dispatcher,
		Envelopes:  envelopes,
		Registry:   registry,
		Logger:     logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, live, profiles, engine
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestRootAndHealth(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	var root map[string]any
	resp := getJSON(t, srv.URL+"/", &root)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Top Scores API", root["name"])
	assert.NotEmpty(t, resp.Header.Get("X-Process-Time"))

	var health map[string]any
	resp = getJSON(t, srv.URL+"/api/v1/healthcheck", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health["status"])

	var dbHealth map[string]any
	resp = getJSON(t, srv.URL+"/health/db", &dbHealth)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not configured", dbHealth["database"])
}

func TestUserFixturesAndResults(t *testing.T) {
	srv, live, _, _ := newTestServer(t)

	fixture := &match.Match{
		ID:          "m1",
		Competition: match.Competition{Name: "Premier League"},
		HomeTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Arsenal", FullName: "Arsenal"}},
		AwayTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Chelsea", FullName: "Chelsea"}},
		Date:        "2026-08-31",
	}
	result := &match.Match{
		ID:          "m2",
		Competition: match.Competition{Name: "Premier League"},
		HomeTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Leeds", FullName: "Leeds"}},
		AwayTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Everton", FullName: "Everton"}},
		Date:        "2026-08-30",
		Started:     true,
		Finished:    true,
	}
	live.ApplyUpdate("m1", fixture)
	live.ApplyUpdate("m2", result)
	live.SetInterested("m1", "d1", true)
	live.SetInterested("m2", "d1", true)

	var fixtures []match.Match
	resp := getJSON(t, srv.URL+"/api/v1/user/d1/matches/fixtures", &fixtures)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, fixtures, 1)
	assert.Equal(t, "m1", fixtures[0].ID)

	var results []match.Match
	getJSON(t, srv.URL+"/api/v1/user/d1/matches/results", &results)
	require.Len(t, results, 1)
	assert.Equal(t, "m2", results[0].ID)

	// An unknown device gets empty lists, not an error.
	var none []match.Match
	resp = getJSON(t, srv.URL+"/api/v1/user/nobody/matches/fixtures", &none)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, none)
}

func TestPreferencesRoundTrip(t *testing.T) {
	srv, live, _, _ := newTestServer(t)

	m := &match.Match{
		ID:          "m1",
		Competition: match.Competition{Name: "Premier League"},
		HomeTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Arsenal", FullName: "Arsenal"}},
		AwayTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Chelsea", FullName: "Chelsea"}},
		Date:        "2026-08-31",
	}
	live.ApplyUpdate("m1", m)

	resp, err := http.Get(srv.URL + "/api/v1/user/d1/preferences")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := `{"competitions":["Premier League"],"pushToken":"tok"}`
	req, err := http.NewRequest(http.MethodPut,
		srv.URL+"/api/v1/user/d1/preferences", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p profile.Profile
	getJSON(t, srv.URL+"/api/v1/user/d1/preferences", &p)
	assert.Equal(t, "d1", p.DeviceID)
	assert.Equal(t, []string{"Premier League"}, p.Competitions)

	// Interest recomputation runs off the preference change.
	var interested struct {
		InterestedUsers []string `json:"interestedUsers"`
	}
	getJSON(t, srv.URL+"/api/v1/debug/match/m1/interested", &interested)
	assert.Equal(t, []string{"d1"}, interested.InterestedUsers)
}

func TestPredictorEndpoints(t *testing.T) {
	srv, live, profiles, engine := newTestServer(t)

	require.NoError(t, profiles.Put(context.Background(), &profile.Profile{
		DeviceID:       "d1",
		PredictorSpeed: "fast",
	}))
	live.ApplyUpdate("m1", &match.Match{
		ID:          "m1",
		Competition: match.Competition{Name: "Premier League"},
		HomeTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Arsenal", FullName: "Arsenal"}, Rating: 1900},
		AwayTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Chelsea", FullName: "Chelsea"}, Rating: 1850},
		Date:        "2026-08-31",
	})

	post := func(path, body string) *http.Response {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	payload := `{"matchId":"m1","device":{"id":"d1"}}`
	assert.Equal(t, http.StatusOK, post("/api/v1/predictor/init", payload).StatusCode)

	// The simulation keeps ticking after the init request's context is gone.
	require.Eventually(t, func() bool {
		m := engine.Get("d1", "m1")
		return m != nil && m.Time > 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, http.StatusOK, post("/api/v1/predictor/pause", payload).StatusCode)
	assert.Equal(t, http.StatusOK, post("/api/v1/predictor/resume", payload).StatusCode)

	assert.Equal(t, http.StatusBadRequest,
		post("/api/v1/predictor/init", `{"matchId":"","device":{"id":""}}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest,
		post("/api/v1/predictor/init", `{"matchId":"nope","device":{"id":"d1"}}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest,
		post("/api/v1/predictor/pause", `{"matchId":"m9","device":{"id":"d1"}}`).StatusCode)
}

func TestDebugEndpoints(t *testing.T) {
	srv, live, _, _ := newTestServer(t)

	live.ApplyUpdate("m1", &match.Match{
		ID:          "m1",
		Competition: match.Competition{Name: "Premier League"},
		HomeTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Arsenal", FullName: "Arsenal"}},
		AwayTeam:    match.TeamSide{Names: match.TeamNames{DisplayName: "Chelsea", FullName: "Chelsea"}},
		Date:        "2026-08-31",
	})

	var all struct {
		Matches []match.Match `json:"matches"`
	}
	resp := getJSON(t, srv.URL+"/api/v1/debug/matches/all", &all)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, all.Matches, 1)

	var m match.Match
	getJSON(t, srv.URL+"/api/v1/debug/match/m1", &m)
	assert.Equal(t, "m1", m.ID)

	resp, err := http.Get(srv.URL + "/api/v1/debug/match/absent")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var envelopes []notify.Envelope
	resp = getJSON(t, srv.URL+"/api/v1/debug/notifications", &envelopes)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, envelopes)

	var teamsResp map[string][]string
	getJSON(t, srv.URL+"/api/v1/debug/teams", &teamsResp)
	assert.Contains(t, teamsResp, "club")
	assert.Contains(t, teamsResp, "international")

	resp = getJSON(t, srv.URL+"/api/v1/debug/parseInfo", &map[string]feed.DateParseInfo{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTestNotificationEndpoint(t *testing.T) {
	srv, _, profiles, _ := newTestServer(t)

	require.NoError(t, profiles.Put(context.Background(), &profile.Profile{
		DeviceID:  "d1",
		PushToken: "tok",
	}))

	resp, err := http.Post(srv.URL+"/api/v1/debug/notifications/test/user/d1", "application/json", nil)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, true, out["success"])

	// Device without a token reports a failed send but not an HTTP error.
	resp, err = http.Post(srv.URL+"/api/v1/debug/notifications/test/user/ghost", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	assert.Equal(t, false, out["success"])
}
