package teams

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skynolimit/topscores/internal/config"
)

// Sanity floors: an upstream response smaller than this is treated as a bad
// pull and the previous ratings are kept.
const (
	minClubRatings     = 600
	minNationalRatings = 200
)

// EloLoader periodically pulls club and national team Elo ratings and feeds
// them into the registry. Club ratings come as CSV, national ratings as TSV
// with a separate code-to-name mapping file.
type EloLoader struct {
	httpClient  *http.Client
	clubURL     string
	nationalURL string
	namesURL    string
	interval    time.Duration
	registry    *Registry
	logger      *slog.Logger
}

func NewEloLoader(cfg *config.Config, registry *Registry, logger *slog.Logger) *EloLoader {
	return &EloLoader{
		httpClient:  &http.Client{Timeout: cfg.FeedTimeout},
		clubURL:     cfg.RatingsClubURL,
		nationalURL: cfg.RatingsNationalURL,
		namesURL:    cfg.RatingsNationalNamesURL,
		interval:    cfg.RatingsRefreshInterval,
		registry:    registry,
		logger:      logger,
	}
}

// Run loads ratings immediately, then refreshes on the configured interval
// until the context is cancelled.
func (l *EloLoader) Run(ctx context.Context) {
	if err := l.Refresh(ctx); err != nil {
		l.logger.Error("Initial ratings load failed", "error", err)
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Refresh(ctx); err != nil {
				l.logger.Error("Ratings refresh failed", "error", err)
			}
		}
	}
}

// Refresh pulls both ratings tables. Each table updates independently so a
// single failed upstream leaves the other current.
func (l *EloLoader) Refresh(ctx context.Context) error {
	var firstErr error

	club, err := l.fetchClubRatings(ctx)
	if err != nil {
		firstErr = err
		l.logger.Warn("Club ratings fetch failed, keeping previous table", "error", err)
	}
	national, err := l.fetchNationalRatings(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = err
		}
		l.logger.Warn("National ratings fetch failed, keeping previous table", "error", err)
	}

	if len(club) < minClubRatings {
		club = nil
	}
	if len(national) < minNationalRatings {
		national = nil
	}
	if club == nil && national == nil {
		return firstErr
	}

	l.registry.SetRatings(club, national)
	return nil
}

func (l *EloLoader) fetchClubRatings(ctx context.Context) ([]Rating, error) {
	url := strings.ReplaceAll(l.clubURL, "{YYYY-MM-DD}", time.Now().UTC().Format("2006-01-02"))
	body, err := l.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseClubRatingsCSV(body), nil
}

func (l *EloLoader) fetchNationalRatings(ctx context.Context) ([]Rating, error) {
	namesBody, err := l.get(ctx, l.namesURL)
	if err != nil {
		return nil, err
	}
	names := ParseTeamNamesTSV(namesBody)

	body, err := l.get(ctx, l.nationalURL)
	if err != nil {
		return nil, err
	}
	return ParseNationalRatingsTSV(body, names), nil
}

func (l *EloLoader) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ratings fetch %s returned %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// ParseClubRatingsCSV parses the Club Elo CSV download. Columns are
// Rank,Club,Country,Level,Elo,From,To; only Club and Elo are kept.
func ParseClubRatingsCSV(data string) []Rating {
	var ratings []Rating
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		if i == 0 { // header
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 5 {
			continue
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		if err != nil || parts[1] == "" {
			continue
		}
		ratings = append(ratings, Rating{Team: parts[1], Rating: rating})
	}
	return ratings
}

// ParseNationalRatingsTSV parses the World Football Elo TSV, mapping team
// codes to names via the provided table. Rows with unknown codes keep the
// raw code so the rating is not lost.
func ParseNationalRatingsTSV(data string, names map[string]string) []Rating {
	var ratings []Rating
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || parts[2] == "" {
			continue
		}
		team := parts[2]
		if name, ok := names[team]; ok {
			team = name
		}
		ratings = append(ratings, Rating{Team: team, Rating: rating})
	}
	return ratings
}

// ParseTeamNamesTSV parses the code-to-name mapping, e.g. "ENG" -> "England".
func ParseTeamNamesTSV(data string) map[string]string {
	names := make(map[string]string)
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		names[parts[0]] = parts[1]
	}
	return names
}
