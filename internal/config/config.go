// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ctl.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// League registry — the competitions the service tracks. Matches the
// flattened leagues API: name plus optional sub-heading, a sort weight, and
// whether the competition is international (national sides rather than clubs).
// --------------------------------------------------------------------------

type League struct {
	ID              int
	Name            string
	Weight          int
	IsInternational bool
	IsDefault       bool
	OfferTopTeams   bool
}

var LeagueRegistry = []League{
	{ID: 47, Name: "Premier League", Weight: 100, IsDefault: true, OfferTopTeams: true},
	{ID: 87, Name: "LaLiga", Weight: 90, OfferTopTeams: true},
	{ID: 54, Name: "Bundesliga", Weight: 85, OfferTopTeams: true},
	{ID: 55, Name: "Serie A", Weight: 85, OfferTopTeams: true},
	{ID: 53, Name: "Ligue 1", Weight: 80, OfferTopTeams: true},
	{ID: 42, Name: "Champions League", Weight: 95, IsDefault: true, OfferTopTeams: true},
	{ID: 73, Name: "Europa League", Weight: 70, OfferTopTeams: true},
	{ID: 48, Name: "Championship", Weight: 60},
	{ID: 132, Name: "FA Cup", Weight: 65},
	{ID: 133, Name: "EFL Cup", Weight: 55},
	{ID: 77, Name: "World Cup", Weight: 100, IsInternational: true, IsDefault: true},
	{ID: 50, Name: "Euro", Weight: 95, IsInternational: true},
	{ID: 114, Name: "Friendlies", Weight: 10, IsInternational: true},
	{ID: 489, Name: "Club World Cup", Weight: 40},
	{ID: 10216, Name: "Nations League", Weight: 50, IsInternational: true},
}

// LeagueByID returns the registry entry for the given league ID.
func LeagueByID(id int) (League, bool) {
	for _, l := range LeagueRegistry {
		if l.ID == id {
			return l, true
		}
	}
	return League{}, false
}

// --------------------------------------------------------------------------
// Team aliases — groups of names that refer to the same team. Rating sources
// and the fixtures feed do not always agree on naming ("PSG" vs "Paris Saint
// Germain"), so rating lookups resolve through these groups.
// --------------------------------------------------------------------------

var TeamAliases = [][]string{
	{"Paris Saint-Germain", "Paris Saint Germain", "PSG", "Paris SG"},
	{"Manchester United", "Man United", "Man Utd"},
	{"Manchester City", "Man City"},
	{"Tottenham Hotspur", "Tottenham", "Spurs"},
	{"Wolverhampton Wanderers", "Wolves"},
	{"Internazionale", "Inter", "Inter Milan"},
	{"Atletico Madrid", "Atlético Madrid", "Atleti"},
	{"Bayern Munich", "Bayern München", "Bayern"},
	{"Borussia Dortmund", "Dortmund", "BVB"},
	{"Sporting CP", "Sporting Lisbon", "Sporting"},
	{"West Ham United", "West Ham"},
	{"Newcastle United", "Newcastle"},
	{"Brighton & Hove Albion", "Brighton"},
	{"Nottingham Forest", "Forest"},
}

// --------------------------------------------------------------------------
// Delivery speed tiers — per-user notification delay and simulation tick
// interval lookups. Unknown tiers fall back to the defaults below.
// --------------------------------------------------------------------------

const (
	DefaultSendDelay           = 5 * time.Second
	DefaultPredictorTick       = 500 * time.Millisecond
	DefaultNotificationTTL     = 24 * time.Hour
	DefaultDispatchJitterRange = 500 * time.Millisecond
)

var SendDelays = map[string]time.Duration{
	"supersonic": 0,
	"fast":       2 * time.Second,
	"medium":     5 * time.Second,
	"slow":       10 * time.Second,
}

var PredictorTickIntervals = map[string]time.Duration{
	"supersonic": 1 * time.Millisecond,
	"fast":       250 * time.Millisecond,
	"medium":     500 * time.Millisecond,
	"slow":       1 * time.Second,
}

// SendDelayFor returns the notification delay for a speed preference.
func SendDelayFor(speed string) time.Duration {
	if d, ok := SendDelays[speed]; ok {
		return d
	}
	return DefaultSendDelay
}

// PredictorTickFor returns the simulation tick interval for a speed preference.
func PredictorTickFor(speed string) time.Duration {
	if d, ok := PredictorTickIntervals[speed]; ok {
		return d
	}
	return DefaultPredictorTick
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database (envelope + preferences persistence; optional)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Fixtures feed
	FeedBaseURL          string // {YYYYMMDD} is replaced with the requested date
	FeedTimeout          time.Duration
	FeedRequestsPerMin   int
	FeedMaxParallel      int // fixed-size request windows per batch
	FeedPastDays         int
	FeedFutureDays       int
	RefreshTodayInterval time.Duration
	RefreshYdayInterval  time.Duration
	RefreshOtherInterval time.Duration

	// Team ratings (Elo feeds)
	RatingsClubURL          string // {YYYY-MM-DD} is replaced with today's date
	RatingsNationalURL      string
	RatingsNationalNamesURL string
	RatingsRefreshInterval  time.Duration

	// Notifications
	NotificationTTL time.Duration

	// Predictor
	PredictorGoalChancePerMinute float64
	PredictorRatingDifferential  float64
	PredictorCleanupInterval     time.Duration
	PredictorMaxAge              time.Duration

	// Top teams
	TopTeamsMinClubRating float64

	// Push transport (APNs)
	APNKeyFile    string
	APNKeyID      string
	APNTeamID     string
	APNBundleID   string
	APNProduction bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	return &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		FeedBaseURL:          envOr("MATCHES_API_URL", "https://api.topscores.dev/matches?date={YYYYMMDD}"),
		FeedTimeout:          envDuration("FEED_TIMEOUT", 10*time.Second),
		FeedRequestsPerMin:   envInt("FEED_REQUESTS_PER_MINUTE", 120),
		FeedMaxParallel:      envInt("FEED_MAX_PARALLEL_REQUESTS", 5),
		FeedPastDays:         envInt("FEED_PAST_DAYS", 14),
		FeedFutureDays:       envInt("FEED_FUTURE_DAYS", 90),
		RefreshTodayInterval: envDuration("REFRESH_TODAY_INTERVAL", 5*time.Second),
		RefreshYdayInterval:  envDuration("REFRESH_YESTERDAY_INTERVAL", 30*time.Minute),
		RefreshOtherInterval: envDuration("REFRESH_OTHER_INTERVAL", time.Hour),

		RatingsClubURL:          envOr("RATINGS_CLUB_URL", "http://api.clubelo.com/{YYYY-MM-DD}"),
		RatingsNationalURL:      envOr("RATINGS_NATIONAL_URL", "https://www.eloratings.net/World.tsv"),
		RatingsNationalNamesURL: envOr("RATINGS_NATIONAL_NAMES_URL", "https://www.eloratings.net/en.teams.tsv"),
		RatingsRefreshInterval:  envDuration("RATINGS_REFRESH_INTERVAL", 12*time.Hour),

		NotificationTTL: envDuration("NOTIFICATION_TTL", DefaultNotificationTTL),

		PredictorGoalChancePerMinute: envFloat("PREDICTOR_GOAL_CHANCE_PER_MINUTE", 0.025),
		PredictorRatingDifferential:  envFloat("PREDICTOR_RATING_DIFFERENTIAL", 0.5),
		PredictorCleanupInterval:     envDuration("PREDICTOR_CLEANUP_INTERVAL", 30*time.Minute),
		PredictorMaxAge:              envDuration("PREDICTOR_MAX_AGE", 24*time.Hour),

		TopTeamsMinClubRating: envFloat("TOP_TEAMS_MIN_CLUB_RATING", 1500),

		APNKeyFile:    envOr("APN_KEY_FILE", ""),
		APNKeyID:      envOr("APN_KEY_ID", ""),
		APNTeamID:     envOr("APN_TEAM_ID", ""),
		APNBundleID:   envOr("APN_BUNDLE_ID", "topscores.dev.skynolimit"),
		APNProduction: envBool("APN_PRODUCTION", false),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RefreshIntervalFor returns the feed refresh interval for a date relative
// to today: seconds-scale for today, half-hourly for yesterday, hourly
// otherwise.
func (c *Config) RefreshIntervalFor(date string, now time.Time) time.Duration {
	today := now.Format("2006-01-02")
	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	switch date {
	case today:
		return c.RefreshTodayInterval
	case yesterday:
		return c.RefreshYdayInterval
	default:
		return c.RefreshOtherInterval
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
