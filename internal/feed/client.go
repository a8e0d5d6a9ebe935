package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/teams"
)

// Client fetches the fixtures feed over HTTP. The base URL carries a
// {YYYYMMDD} placeholder replaced with the requested date.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	parser     *Parser
	logger     *slog.Logger
}

var noCacheHeaders = map[string]string{
	"Cache-Control": "no-cache",
	"Pragma":        "no-cache",
	"Expires":       "0",
}

// NewClient creates a rate-limited feed client.
func NewClient(cfg *config.Config, registry *teams.Registry, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(cfg.FeedRequestsPerMin) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: cfg.FeedTimeout},
		baseURL:    cfg.FeedBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		parser:     NewParser(registry, logger),
		logger:     logger,
	}
}

// FetchDate returns the parsed matches for a YYYY-MM-DD date. A 404 from the
// upstream maps to ErrNotFound, transport and server errors to ErrUnavailable.
func (c *Client) FetchDate(ctx context.Context, date string) ([]*match.Match, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	apiDate := strings.ReplaceAll(date, "-", "")
	u := strings.ReplaceAll(c.baseURL, "{YYYYMMDD}", apiDate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range noCacheHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, date)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnavailable, date, resp.StatusCode)
	}

	var payload feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DataShapeError{Entity: "response", Detail: err.Error()}
	}

	matches := c.parser.Parse(payload.Leagues, date)
	c.logger.Debug("Fetched fixtures",
		"date", date, "leagues", len(payload.Leagues),
		"matches", len(matches), "durationMs", time.Since(start).Milliseconds())
	return matches, nil
}
