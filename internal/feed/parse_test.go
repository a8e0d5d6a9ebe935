package feed

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skynolimit/topscores/internal/teams"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestParser() *Parser {
	return NewParser(teams.NewRegistry(nil, 1500, nil, testLogger()), testLogger())
}

func intPtr(n int) *int { return &n }

func TestParseCoveredLeaguesOnly(t *testing.T) {
	matches := newTestParser().Parse([]leaguePayload{
		{
			PrimaryID: 47,
			Name:      "Premier League",
			Matches: []matchPayload{{
				ID:   1001,
				Home: sidePayload{Name: "Arsenal", LongName: "Arsenal FC", Score: 2},
				Away: sidePayload{Name: "Chelsea", LongName: "Chelsea FC", Score: 1},
				Status: statusPayload{
					UTCTime: time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC),
					Started: true,
				},
			}},
		},
		{
			PrimaryID: 999999,
			Name:      "Obscure league",
			Matches:   []matchPayload{{ID: 2001, Home: sidePayload{Name: "A"}, Away: sidePayload{Name: "B"}}},
		},
	}, "2026-08-31")

	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "1001", m.ID)
	assert.Equal(t, "Premier League", m.Competition.Name)
	assert.Equal(t, "", m.Competition.SubHeading)
	assert.Equal(t, 100, m.Competition.Weight)
	assert.Equal(t, "Arsenal", m.HomeTeam.Names.DisplayName)
	assert.Equal(t, "Arsenal FC", m.HomeTeam.Names.FullName)
	assert.Equal(t, 2, m.HomeTeam.Score)
	assert.Equal(t, "2026-08-31", m.Date)
	assert.Equal(t, "15:00", m.KickOffTime)
	assert.True(t, m.Started)
	assert.Equal(t, -1, m.HomePenaltyScore)
	assert.Equal(t, -1, m.AwayPenaltyScore)
}

func TestParseSkipsCancelledAndMalformed(t *testing.T) {
	matches := newTestParser().Parse([]leaguePayload{{
		PrimaryID: 47,
		Name:      "Premier League",
		Matches: []matchPayload{
			{ID: 1, Home: sidePayload{Name: "A"}, Away: sidePayload{Name: "B"}, Status: statusPayload{Cancelled: true}},
			{ID: 0, Home: sidePayload{Name: "A"}, Away: sidePayload{Name: "B"}},
			{ID: 2, Home: sidePayload{Name: ""}, Away: sidePayload{Name: "B"}},
			{ID: 3, Home: sidePayload{Name: "A"}, Away: sidePayload{Name: "B"}},
		},
	}}, "2026-08-31")

	require.Len(t, matches, 1)
	assert.Equal(t, "3", matches[0].ID)
}

func TestParseDisplayNameFallsBackForFullName(t *testing.T) {
	matches := newTestParser().Parse([]leaguePayload{{
		PrimaryID: 77,
		Name:      "World Cup",
		Matches: []matchPayload{{
			ID:   1,
			Home: sidePayload{Name: "France"},
			Away: sidePayload{Name: "Brazil"},
		}},
	}}, "2026-08-31")

	require.Len(t, matches, 1)
	assert.Equal(t, "France", matches[0].HomeTeam.Names.FullName)
	assert.True(t, matches[0].Competition.IsInternational)
}

func TestTimeLabelDerivation(t *testing.T) {
	cases := []struct {
		name string
		st   statusPayload
		want string
	}{
		{"half time", statusPayload{Reason: reason("HT")}, "HT"},
		{"finished", statusPayload{Finished: true, Reason: reason("FT")}, "FT"},
		{"finished after extra time", statusPayload{Finished: true, Reason: reason("AET")}, "AET"},
		{"finished on penalties", statusPayload{Finished: true, Reason: reason("Pen")}, "AET"},
		{"running clock", statusPayload{Started: true, LiveTime: liveTime("63'")}, "63'"},
		{"not started", statusPayload{}, ""},
		{"postponed", statusPayload{Reason: reason("PP")}, "PP"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, timeLabel(tc.st), tc.name)
	}
}

func TestMatchTime(t *testing.T) {
	assert.Equal(t, 63, matchTime("63:12"))
	assert.Equal(t, 90, matchTime("90:00"))
	assert.Equal(t, 0, matchTime(""))
	assert.Equal(t, 0, matchTime("abc"))
}

func TestSubHeading(t *testing.T) {
	assert.Equal(t, "", subHeading("Premier League", "Premier League", ""))
	assert.Equal(t, "Group A", subHeading("World Cup Group A", "World Cup", ""))
	assert.Equal(t, "Semi-finals", subHeading("Champions League", "Champions League", "1/2"))
	assert.Equal(t, "Round of 16", subHeading("Champions League", "Champions League", "1/8"))
	assert.Equal(t, "Round 3", subHeading("FA Cup", "FA Cup", "3"))
	assert.Equal(t, "Final", subHeading("Euro", "Euro", "final"))
	assert.Equal(t, "Playoffs", subHeading("Championship Final Stage: Playoffs", "Championship", ""))
}

func TestParsePenaltyShootOut(t *testing.T) {
	matches := newTestParser().Parse([]leaguePayload{{
		PrimaryID: 42,
		Name:      "Champions League",
		Matches: []matchPayload{{
			ID:   1,
			Home: sidePayload{Name: "Inter", Score: 1, PenScore: intPtr(4)},
			Away: sidePayload{Name: "Milan", Score: 1, PenScore: intPtr(3)},
			Status: statusPayload{
				Started:  true,
				Finished: true,
				Reason:   reason("Pen"),
			},
		}},
	}}, "2026-08-31")

	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "AET", m.TimeLabel)
	assert.Equal(t, 4, m.HomePenaltyScore)
	assert.Equal(t, 3, m.AwayPenaltyScore)
	assert.Contains(t, m.StatusMessages, "Inter win 4 - 3 on penalties")
}

func reason(short string) shortLongPayload {
	return shortLongPayload{Short: short}
}

func liveTime(short string) shortLongPayload {
	return shortLongPayload{Short: short}
}
