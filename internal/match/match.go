// Package match defines the tracked match record and the derived text rules
// (status messages, aggregate and penalty phrasings) shared by the live
// tracking pipeline and the predictor.
package match

import (
	"fmt"
	"time"
)

// Change paths emitted by the store's diff. Only these four fields trigger
// notifications; everything else updates silently.
const (
	PathHomeScore = "home.score"
	PathAwayScore = "away.score"
	PathTimeLabel = "timeLabel"
	PathStarted   = "started"
)

// ChangeEvent records a single tracked-field transition on a match.
type ChangeEvent struct {
	MatchID   string
	Path      string
	Timestamp time.Time
}

// TeamNames holds the short and long forms of a team name as reported by the
// fixtures feed.
type TeamNames struct {
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName"`
}

// TeamSide is one side of a fixture.
type TeamSide struct {
	Names  TeamNames `json:"names"`
	Score  int       `json:"score"`
	Rating float64   `json:"rating"`
}

// Competition identifies the league or tournament a match belongs to.
type Competition struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	SubHeading      string `json:"subHeading,omitempty"`
	Weight          int    `json:"weight"`
	IsInternational bool   `json:"isInternational"`
}

// PredictorDetails is set only on simulated matches.
type PredictorDetails struct {
	DeviceID     string     `json:"deviceId"`
	Status       string     `json:"status"` // started, paused, finished
	StartedTime  time.Time  `json:"startedTime"`
	FinishedTime *time.Time `json:"finishedTime,omitempty"`
}

// Match is a tracked fixture, live or simulated. The JSON shape is the
// nested form consumed by the app.
type Match struct {
	ID          string      `json:"id"`
	Competition Competition `json:"competition"`
	HomeTeam    TeamSide    `json:"homeTeam"`
	AwayTeam    TeamSide    `json:"awayTeam"`

	Date            string    `json:"date"` // YYYY-MM-DD
	KickOffTime     string    `json:"kickOffTime,omitempty"`
	DateTimeUTC     time.Time `json:"dateTimeUtc"`
	Time            int       `json:"time"`      // minutes played
	TimeLabel       string    `json:"timeLabel"` // "13'", "HT", "FT", "AET", "Pen", ""
	Started         bool      `json:"started"`
	Finished        bool      `json:"finished"`
	Cancelled       bool      `json:"cancelled"`
	StatusMessages  []string  `json:"statusMessages"`
	AggregateScore  string    `json:"aggregateScore,omitempty"` // raw "A - B" string from the feed
	HomePenaltyScore int      `json:"homePenaltyScore"`         // -1 when no shoot-out
	AwayPenaltyScore int      `json:"awayPenaltyScore"`

	InterestedUsers []string `json:"interestedUsers"`

	Predictor *PredictorDetails `json:"predictorDetails,omitempty"`
}

// IsTeamPlaying reports whether the named team is either side of the match,
// by exact display or full name.
func (m *Match) IsTeamPlaying(teamName string) bool {
	return m.HomeTeam.Names.DisplayName == teamName ||
		m.HomeTeam.Names.FullName == teamName ||
		m.AwayTeam.Names.DisplayName == teamName ||
		m.AwayTeam.Names.FullName == teamName
}

// CompetitionLabel returns the competition line used in notification bodies,
// e.g. "Champions League - Semi-finals".
func (m *Match) CompetitionLabel() string {
	if m.Competition.SubHeading != "" {
		return fmt.Sprintf("%s - %s", m.Competition.Name, m.Competition.SubHeading)
	}
	return m.Competition.Name
}

// ScoreLine returns "Home  H - A  Away" using display names.
func (m *Match) ScoreLine() string {
	return fmt.Sprintf("%s  %d - %d  %s",
		m.HomeTeam.Names.DisplayName, m.HomeTeam.Score,
		m.AwayTeam.Score, m.AwayTeam.Names.DisplayName)
}

// Clone returns a deep copy, used when seeding a predictor match from a live
// record so that simulation never mutates the original.
func (m *Match) Clone() *Match {
	c := *m
	c.StatusMessages = append([]string(nil), m.StatusMessages...)
	c.InterestedUsers = append([]string(nil), m.InterestedUsers...)
	if m.Predictor != nil {
		p := *m.Predictor
		c.Predictor = &p
	}
	return &c
}

// TimeLabelForMinute renders a playing minute as a label, e.g. 10 -> "10'".
func TimeLabelForMinute(minute int) string {
	return fmt.Sprintf("%d'", minute)
}
