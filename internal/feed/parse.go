package feed

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/teams"
)

// --------------------------------------------------------------------------
// Upstream payload shapes
// --------------------------------------------------------------------------

type feedPayload struct {
	Leagues []leaguePayload `json:"leagues"`
}

type leaguePayload struct {
	PrimaryID int            `json:"primaryId"`
	Name      string         `json:"name"`
	Matches   []matchPayload `json:"matches"`
}

type matchPayload struct {
	ID              int64         `json:"id"`
	Home            sidePayload   `json:"home"`
	Away            sidePayload   `json:"away"`
	TournamentStage string        `json:"tournamentStage"`
	Status          statusPayload `json:"status"`
}

type sidePayload struct {
	Name     string `json:"name"`
	LongName string `json:"longName"`
	Score    int    `json:"score"`
	PenScore *int   `json:"penScore"`
}

type statusPayload struct {
	UTCTime       time.Time         `json:"utcTime"`
	Started       bool              `json:"started"`
	Finished      bool              `json:"finished"`
	Cancelled     bool              `json:"cancelled"`
	AggregatedStr string            `json:"aggregatedStr"`
	Reason        shortLongPayload  `json:"reason"`
	LiveTime      shortLongPayload  `json:"liveTime"`
	Halfs         extraHalfsPayload `json:"halfs"`
}

type shortLongPayload struct {
	Short string `json:"short"`
	Long  string `json:"long"`
}

type extraHalfsPayload struct {
	FirstExtraHalfStarted  bool `json:"firstExtraHalfStarted"`
	SecondExtraHalfStarted bool `json:"secondExtraHalfStarted"`
}

// --------------------------------------------------------------------------
// Parser
// --------------------------------------------------------------------------

// Parser converts upstream league payloads into match records. Leagues not
// present in the configured registry are dropped; cancelled matches are
// skipped. Team names encountered along the way are registered for the
// browse lists.
type Parser struct {
	registry *teams.Registry
	logger   *slog.Logger
}

func NewParser(registry *teams.Registry, logger *slog.Logger) *Parser {
	return &Parser{registry: registry, logger: logger}
}

// Parse flattens the covered leagues for one date into match records.
func (p *Parser) Parse(leagues []leaguePayload, date string) []*match.Match {
	var out []*match.Match
	for _, lg := range leagues {
		league, ok := config.LeagueByID(lg.PrimaryID)
		if !ok {
			continue
		}
		for _, mp := range lg.Matches {
			if mp.Status.Cancelled {
				continue
			}
			m, err := p.parseMatch(league, lg.Name, mp, date)
			if err != nil {
				p.logger.Warn("Skipping malformed match entry",
					"league", league.Name, "date", date, "error", err)
				continue
			}
			out = append(out, m)
		}
	}
	return out
}

func (p *Parser) parseMatch(league config.League, leagueHeading string, mp matchPayload, date string) (*match.Match, error) {
	if mp.ID == 0 {
		return nil, &DataShapeError{Entity: "match", Detail: "missing id"}
	}
	if mp.Home.Name == "" || mp.Away.Name == "" {
		return nil, &DataShapeError{Entity: "match", Detail: "missing team name"}
	}

	home := teamNames(mp.Home)
	away := teamNames(mp.Away)
	homePen, awayPen := penScore(mp.Home), penScore(mp.Away)

	m := &match.Match{
		ID: strconv.FormatInt(mp.ID, 10),
		Competition: match.Competition{
			ID:              league.ID,
			Name:            league.Name,
			SubHeading:      subHeading(leagueHeading, league.Name, mp.TournamentStage),
			Weight:          league.Weight,
			IsInternational: league.IsInternational,
		},
		HomeTeam: match.TeamSide{
			Names:  home,
			Score:  mp.Home.Score,
			Rating: p.registry.RatingFor(home),
		},
		AwayTeam: match.TeamSide{
			Names:  away,
			Score:  mp.Away.Score,
			Rating: p.registry.RatingFor(away),
		},
		Date:             date,
		DateTimeUTC:      mp.Status.UTCTime,
		Time:             matchTime(mp.Status.LiveTime.Long),
		TimeLabel:        timeLabel(mp.Status),
		Started:          mp.Status.Started,
		Finished:         mp.Status.Finished,
		AggregateScore:   mp.Status.AggregatedStr,
		HomePenaltyScore: homePen,
		AwayPenaltyScore: awayPen,
	}
	if !mp.Status.UTCTime.IsZero() {
		m.KickOffTime = mp.Status.UTCTime.Format("15:04")
	}
	m.StatusMessages = match.BuildStatusMessages(match.StatusInfo{
		ShortStatus:   mp.Status.Reason.Short,
		LiveTimeShort: mp.Status.LiveTime.Short,
		Finished:      mp.Status.Finished,
		ExtraTimeStarted: mp.Status.Halfs.FirstExtraHalfStarted ||
			mp.Status.Halfs.SecondExtraHalfStarted,
		HomePenScore:   homePen,
		AwayPenScore:   awayPen,
		AggregateScore: mp.Status.AggregatedStr,
	}, home.DisplayName, away.DisplayName)

	p.registry.Register(home, league.IsInternational)
	p.registry.Register(away, league.IsInternational)
	return m, nil
}

func teamNames(s sidePayload) match.TeamNames {
	full := s.LongName
	if full == "" {
		full = s.Name
	}
	return match.TeamNames{DisplayName: s.Name, FullName: full}
}

func penScore(s sidePayload) int {
	if s.PenScore == nil {
		return -1
	}
	return *s.PenScore
}

// matchTime extracts the minutes played from the long live time ("63:12").
func matchTime(liveTimeLong string) int {
	if liveTimeLong == "" {
		return 0
	}
	mins, _, _ := strings.Cut(liveTimeLong, ":")
	n, err := strconv.Atoi(strings.TrimSpace(mins))
	if err != nil {
		return 0
	}
	return n
}

// timeLabel derives the display label, e.g. "12'", "HT", "FT", "AET", "Pen".
// A finished match reads "FT" unless it went to extra time or penalties.
func timeLabel(st statusPayload) string {
	if st.Reason.Short == "HT" {
		return "HT"
	}
	if st.Finished {
		if st.Reason.Short == "AET" || st.Reason.Short == "Pen" {
			return "AET"
		}
		return "FT"
	}
	if st.LiveTime.Short != "" {
		return st.LiveTime.Short
	}
	return st.Reason.Short
}

// subHeading trims the competition name out of the league heading and
// appends a friendly tournament stage label when present.
func subHeading(leagueHeading, competitionName, stage string) string {
	sub := strings.TrimSpace(strings.ReplaceAll(leagueHeading, competitionName, ""))

	if stage != "" {
		label := stageLabel(stage)
		if sub != "" {
			sub = fmt.Sprintf("%s: %s", sub, label)
		} else {
			sub = label
		}
	}

	return strings.ReplaceAll(sub, "Final Stage: ", "")
}

func stageLabel(stage string) string {
	switch stage {
	case "1/16":
		return "Round of 32"
	case "1/8":
		return "Round of 16"
	case "1/4":
		return "Quarter-finals"
	case "1/2":
		return "Semi-finals"
	}
	label := strings.TrimSpace(stage)
	if _, err := strconv.Atoi(label); err == nil {
		return "Round " + label
	}
	// Capitalise bare stage words from the feed, e.g. "final" -> "Final".
	r := []rune(label)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}
