package store

import (
	"time"

	"github.com/skynolimit/topscores/internal/match"
)

// detectChanges diffs the notification-relevant fields of two match states.
// A field contributes an event only when its value actually differs; the
// order is fixed (home score, away score, time label, kick-off) so that
// simultaneous changes always classify the same way.
func detectChanges(id string, old, new *match.Match, now time.Time) []match.ChangeEvent {
	var events []match.ChangeEvent
	add := func(path string) {
		events = append(events, match.ChangeEvent{MatchID: id, Path: path, Timestamp: now})
	}

	if old.HomeTeam.Score != new.HomeTeam.Score {
		add(match.PathHomeScore)
	}
	if old.AwayTeam.Score != new.AwayTeam.Score {
		add(match.PathAwayScore)
	}
	if old.TimeLabel != new.TimeLabel {
		add(match.PathTimeLabel)
	}
	if old.Started != new.Started {
		add(match.PathStarted)
	}
	return events
}
