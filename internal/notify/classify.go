package notify

import (
	"fmt"

	"github.com/skynolimit/topscores/internal/match"
)

// Classify maps a single change event on a match to a push message, or nil
// when the event is not notification-worthy. Cancelled matches never
// produce messages.
func Classify(m *match.Match, ev match.ChangeEvent) *Message {
	if m == nil || m.Cancelled {
		return nil
	}
	switch ev.Path {
	case match.PathStarted:
		if !m.Started {
			return nil
		}
		return &Message{
			Title: "Kick off!",
			Body: fmt.Sprintf("Match started: %s vs %s",
				m.HomeTeam.Names.DisplayName, m.AwayTeam.Names.DisplayName),
			Type: TypeKickOff,
		}
	case match.PathHomeScore:
		return goalMessage(m, true)
	case match.PathAwayScore:
		return goalMessage(m, false)
	case match.PathTimeLabel:
		return timeLabelMessage(m)
	}
	return nil
}

func goalMessage(m *match.Match, homeScored bool) *Message {
	scorer := m.AwayTeam.Names.DisplayName
	homeMarker, awayMarker := "", " ⚽️"
	if homeScored {
		scorer = m.HomeTeam.Names.DisplayName
		homeMarker, awayMarker = "⚽️ ", ""
	}
	body := fmt.Sprintf("%s%s  %d - %d  %s%s",
		homeMarker, m.HomeTeam.Names.DisplayName, m.HomeTeam.Score,
		m.AwayTeam.Score, m.AwayTeam.Names.DisplayName, awayMarker)
	if m.TimeLabel != "" {
		body += fmt.Sprintf(" (%s)", m.TimeLabel)
	}
	body += "\n" + m.CompetitionLabel()
	return &Message{
		Title: "Goal update: " + scorer,
		Body:  body,
		Type:  TypeScoreUpdates,
	}
}

// timeLabelMessage covers the phase transitions users care about. Other
// time label values (running clock, postponements) are silent.
func timeLabelMessage(m *match.Match) *Message {
	var prefix, typ string
	switch m.TimeLabel {
	case "HT":
		prefix, typ = "🕒 Half time", TypeHalfTime
	case "FT":
		prefix, typ = "🕒 Full time", TypeFullTime
	case "AET":
		prefix, typ = "🕒 Extra time finished", TypeFullTime
	default:
		return nil
	}
	return &Message{
		Title: fmt.Sprintf("%s: %s", prefix, m.ScoreLine()),
		Body:  m.CompetitionLabel(),
		Type:  typ,
	}
}
