// Package interest decides which users care about which matches. The
// predicate is a pure function of (match, profile, top-teams list); the
// Index wires it to the store so that new matches and preference changes
// both converge the per-match interest sets incrementally.
//
// Matching is exact (case-insensitive) on team and competition names. The
// fuzzy alias resolution used for rating lookups is deliberately not applied
// here: following "Barca" must not match "Barcelona".
package interest

import (
	"log/slog"
	"strings"

	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/store"
	"github.com/skynolimit/topscores/internal/teams"
)

const topTeamsSuffix = ": Top teams"

// IsOfInterest reports whether the match is of interest to the profile:
// an OR of the competition predicate and the followed-team predicate.
func IsOfInterest(m *match.Match, p *profile.Profile, topTeams []string) bool {
	if m == nil || p == nil {
		return false
	}
	if matchesCompetitions(m, p.Competitions, topTeams) {
		return true
	}
	return matchesFollowedTeams(m, p.FollowedTeams())
}

func matchesCompetitions(m *match.Match, labels []string, topTeams []string) bool {
	for _, label := range labels {
		if label == "" {
			continue
		}

		// "El Clasico" is a virtual competition: any LaLiga meeting of
		// Real Madrid and Barcelona.
		if label == "El Clasico" {
			if m.Competition.Name == "LaLiga" && m.IsTeamPlaying("Real Madrid") && m.IsTeamPlaying("Barcelona") {
				return true
			}
			continue
		}

		if strings.Contains(label, "Top teams") {
			if competitionMatches(label, m) && topTeamPlaying(m, topTeams) {
				return true
			}
			continue
		}

		if competitionMatches(label, m) {
			return true
		}
	}
	return false
}

// competitionMatches checks a preference label against the competition name
// or the "name: subHeading" concatenation, case-insensitively. Selector
// suffixes are stripped first.
func competitionMatches(label string, m *match.Match) bool {
	label = strings.Replace(label, topTeamsSuffix, "", 1)
	label = strings.Replace(label, ": All matches", "", 1)
	label = strings.ToLower(label)

	name := strings.ToLower(m.Competition.Name)
	full := name
	if m.Competition.SubHeading != "" {
		full += ": " + strings.ToLower(m.Competition.SubHeading)
	}
	return label == full || label == name
}

func topTeamPlaying(m *match.Match, topTeams []string) bool {
	for _, top := range topTeams {
		if m.HomeTeam.Names.FullName == top || m.HomeTeam.Names.DisplayName == top ||
			m.AwayTeam.Names.FullName == top || m.AwayTeam.Names.DisplayName == top {
			return true
		}
	}
	return false
}

func matchesFollowedTeams(m *match.Match, followed []string) bool {
	for _, team := range followed {
		if team == "" {
			continue
		}
		if !competitionRelevantForTeam(m, team) {
			continue
		}
		if strings.EqualFold(m.HomeTeam.Names.FullName, team) || strings.EqualFold(m.AwayTeam.Names.FullName, team) {
			return true
		}
	}
	return false
}

// competitionRelevantForTeam guards followed-team matches against qualifier
// collisions: a follower of "England" must not see "England Women" or youth
// fixtures, while a follower of "England Women" must.
func competitionRelevantForTeam(m *match.Match, team string) bool {
	teamLower := strings.ToLower(team)
	compLower := strings.ToLower(m.Competition.Name)

	for _, qualifier := range []string{"women", "under", "school"} {
		if strings.Contains(teamLower, qualifier) && strings.Contains(compLower, qualifier) {
			return true
		}
	}
	return !strings.Contains(compLower, "women") &&
		!strings.Contains(compLower, "under") &&
		!strings.Contains(compLower, "school")
}

// --------------------------------------------------------------------------
// Index — wires the predicate to the store
// --------------------------------------------------------------------------

// Index keeps per-match interest sets converged as matches appear and
// preferences change.
type Index struct {
	store    *store.Store
	profiles *profile.Cache
	registry *teams.Registry
	logger   *slog.Logger
}

// NewIndex creates an index over the given store, profile cache and team
// registry.
func NewIndex(s *store.Store, profiles *profile.Cache, registry *teams.Registry, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{store: s, profiles: profiles, registry: registry, logger: logger}
}

// RecomputeForMatch re-evaluates every known profile against one match.
// Called when a match is first seen. Idempotent.
func (ix *Index) RecomputeForMatch(matchID string) {
	m := ix.store.Get(matchID)
	if m == nil {
		return
	}
	topTeams := ix.registry.TopTeams()
	for _, p := range ix.profiles.All() {
		ix.store.SetInterested(matchID, p.DeviceID, IsOfInterest(m, p, topTeams))
	}
}

// RecomputeForUser re-evaluates one profile against every stored match.
// Called when a user's preferences change. Idempotent.
func (ix *Index) RecomputeForUser(deviceID string, p *profile.Profile) {
	topTeams := ix.registry.TopTeams()
	for _, m := range ix.store.All() {
		ix.store.SetInterested(m.ID, deviceID, IsOfInterest(m, p, topTeams))
	}
	ix.logger.Info("Recomputed matches of interest", "device_id", deviceID)
}
