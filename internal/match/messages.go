package match

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusInfo carries the raw feed status fields from which the ordered
// status-message list is derived.
type StatusInfo struct {
	ShortStatus      string // "FT", "HT", "AET", "Pen", ...
	LiveTimeShort    string // "13'", "ET", "PET", "Pen", ""
	Finished         bool
	ExtraTimeStarted bool // either extra-time half has started
	HomePenScore     int  // -1 when no shoot-out
	AwayPenScore     int
	AggregateScore   string // raw "A - B" string, "" when not a two-legged tie
}

// BuildStatusMessages derives the ordered, de-duplicated status lines shown
// under a match, e.g. ["FT", "Dortmund win 5-4 on aggregate"].
func BuildStatusMessages(s StatusInfo, homeName, awayName string) []string {
	var messages []string

	// Short match status first; penalties are phrased separately below.
	if s.ShortStatus != "" && s.ShortStatus != "Pen" {
		messages = append(messages, s.ShortStatus)
	}

	switch {
	case s.LiveTimeShort == "ET":
		messages = append(messages, "Waiting for extra time to start")
	case s.LiveTimeShort == "PET":
		messages = append(messages, "Half time in extra time")
	case !s.Finished && s.LiveTimeShort != "Pen" && s.ExtraTimeStarted:
		messages = append(messages, "Extra time being played")
	case !s.Finished && s.LiveTimeShort == "Pen":
		if s.HomePenScore > 0 || s.AwayPenScore > 0 {
			messages = append(messages, fmt.Sprintf("Penalties in progress (%d - %d)", s.HomePenScore, s.AwayPenScore))
		} else {
			messages = append(messages, "Waiting for penalties to start")
		}
	}

	if s.AggregateScore != "" {
		if msg := AggregateScoreMessage(homeName, awayName, s.AggregateScore, s.HomePenScore, s.AwayPenScore); msg != "" {
			messages = append(messages, msg)
		}
	}

	if s.Finished && s.HomePenScore >= 0 && s.AwayPenScore >= 0 {
		messages = append(messages, PenaltyResultMessage(homeName, awayName, s.HomePenScore, s.AwayPenScore))
	}

	return dedupe(messages)
}

// AggregateScoreMessage phrases a two-legged-tie aggregate, e.g.
// "Dortmund win 5-4 on aggregate" or "3-3 on aggregate" for a draw.
// Penalty contributions are subtracted first, as the feed folds them into
// the raw aggregate string. Returns "" if the raw string is not parseable.
func AggregateScoreMessage(homeName, awayName, aggregateScore string, homePenScore, awayPenScore int) string {
	parts := strings.Split(aggregateScore, " - ")
	if len(parts) != 2 {
		return ""
	}
	home, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	away, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return ""
	}

	if homePenScore > 0 {
		home -= homePenScore
	}
	if awayPenScore > 0 {
		away -= awayPenScore
	}

	switch {
	case home == away:
		return fmt.Sprintf("%d-%d on aggregate", home, away)
	case home > away:
		return fmt.Sprintf("%s win %d-%d on aggregate", homeName, home, away)
	default:
		return fmt.Sprintf("%s win %d-%d on aggregate", awayName, away, home)
	}
}

// PenaltyResultMessage phrases a finished shoot-out, with the winner's score
// first regardless of side.
func PenaltyResultMessage(homeName, awayName string, homePenScore, awayPenScore int) string {
	switch {
	case homePenScore > awayPenScore:
		return fmt.Sprintf("%s win %d - %d on penalties", homeName, homePenScore, awayPenScore)
	case homePenScore < awayPenScore:
		return fmt.Sprintf("%s win %d - %d on penalties", awayName, awayPenScore, homePenScore)
	default:
		return fmt.Sprintf("Penalty shoot-out finished %d - %d", homePenScore, awayPenScore)
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
