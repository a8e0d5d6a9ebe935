// Package teams maintains the team ratings table, the curated top-teams
// list, and the known-team registries offered to the app for preference
// selection.
//
// Rating lookups use fuzzy matching (case folding, diacritic stripping,
// substring containment, alias groups) because rating sources rarely agree
// with the fixtures feed on naming. Interest matching deliberately does NOT
// use this fuzziness — it requires exact (case-insensitive) name equality.
package teams

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/skynolimit/topscores/internal/match"
)

// Rating is one team's Elo-style rating.
type Rating struct {
	Team   string
	Rating float64
}

// Registry holds ratings, top teams and known team names. Safe for
// concurrent use; writes replace whole tables.
type Registry struct {
	mu              sync.RWMutex
	clubRatings     []Rating
	nationalRatings []Rating
	maxRating       float64
	topTeams        []string
	club            []string
	international   []string
	aliases         [][]string
	minTopRating    float64
	extraTopTeams   []string
	logger          *slog.Logger
}

// NewRegistry creates a registry with the given alias groups and the minimum
// club rating for top-team inclusion.
func NewRegistry(aliases [][]string, minTopRating float64, extraTopTeams []string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		aliases:       aliases,
		minTopRating:  minTopRating,
		extraTopTeams: extraTopTeams,
		logger:        logger,
	}
}

// SetRatings replaces the club and national rating tables and recomputes the
// derived max rating and top-teams list. A nil table keeps the previous one,
// so a single failed upstream pull never wipes known ratings.
func (r *Registry) SetRatings(club, national []Rating) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if club != nil {
		r.clubRatings = club
	}
	if national != nil {
		r.nationalRatings = national
	}
	club, national = r.clubRatings, r.nationalRatings

	r.maxRating = 0
	for _, rt := range club {
		if rt.Rating > r.maxRating {
			r.maxRating = rt.Rating
		}
	}
	for _, rt := range national {
		if rt.Rating > r.maxRating {
			r.maxRating = rt.Rating
		}
	}

	r.recomputeTopTeams()
	r.logger.Info("Team ratings updated",
		"club", len(club), "national", len(national),
		"top_teams", len(r.topTeams), "max_rating", r.maxRating)
}

// RatingFor returns the rating for a team, checking club ratings before
// national ones. Placeholder names (containing "/", "Winner" or "Loser")
// and unrated teams return 0.
func (r *Registry) RatingFor(names match.TeamNames) float64 {
	if isPlaceholderName(names.DisplayName) || isPlaceholderName(names.FullName) {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.namesWithAliases(names)
	for _, table := range [][]Rating{r.clubRatings, r.nationalRatings} {
		for _, rt := range table {
			if likelyMatch(rt.Team, candidates) {
				return rt.Rating
			}
		}
	}
	return 0
}

// MaxRating returns the highest rating seen across both tables.
func (r *Registry) MaxRating() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxRating
}

// TopTeams returns the curated top-teams list, sorted.
func (r *Registry) TopTeams() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.topTeams...)
}

// IsTopTeamPlaying reports whether either side of the match is a top team,
// by exact display or full name.
func (r *Registry) IsTopTeamPlaying(m *match.Match) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, top := range r.topTeams {
		if m.HomeTeam.Names.FullName == top || m.HomeTeam.Names.DisplayName == top ||
			m.AwayTeam.Names.FullName == top || m.AwayTeam.Names.DisplayName == top {
			return true
		}
	}
	return false
}

// Register adds a team name to the club or international registry. Names
// from placeholder fixtures ("Winner QF1", "Slovakia/England") and very
// short strings are ignored.
func (r *Registry) Register(names match.TeamNames, isInternational bool) {
	if isPlaceholderName(names.FullName) || len(names.FullName) < 3 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := &r.club
	if isInternational {
		list = &r.international
	}
	for _, existing := range *list {
		if existing == names.DisplayName {
			return
		}
	}
	*list = append(*list, names.DisplayName)
}

// Teams returns the sorted known team names for a category ("club" or
// "international").
func (r *Registry) Teams(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var src []string
	if category == "international" {
		src = r.international
	} else {
		src = r.club
	}
	out := make([]string, 0, len(src))
	for _, name := range src {
		if !isPlaceholderName(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// recomputeTopTeams rebuilds the top-teams list: clubs at or above the
// rating floor plus any configured extras, de-duplicated by alias group
// (the first alias in a group wins). Caller holds the write lock.
func (r *Registry) recomputeTopTeams() {
	var teams []string
	teams = append(teams, r.extraTopTeams...)
	for _, rt := range r.clubRatings {
		if rt.Rating >= r.minTopRating {
			teams = append(teams, rt.Team)
		}
	}
	r.topTeams = r.dedupeByAlias(teams)
}

// dedupeByAlias removes names that are later aliases of a team already
// present under its canonical (first) alias.
func (r *Registry) dedupeByAlias(names []string) []string {
	duplicates := make(map[string]struct{})
	for _, name := range names {
		for _, group := range r.aliases {
			for _, alias := range group {
				if alias != name {
					continue
				}
				for _, dup := range group[1:] {
					duplicates[dup] = struct{}{}
				}
			}
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, name := range names {
		if _, isDup := duplicates[name]; isDup {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// namesWithAliases returns both name forms plus every alias in any group
// containing one of them. Caller holds a read lock.
func (r *Registry) namesWithAliases(names match.TeamNames) []string {
	out := []string{names.DisplayName, names.FullName}
	for _, group := range r.aliases {
		for _, alias := range group {
			if alias == names.DisplayName || alias == names.FullName {
				out = append(out, group...)
				break
			}
		}
	}
	return out
}

// likelyMatch reports whether the rating-table name refers to the same team
// as any of the candidate names: normalized equality or either-direction
// containment.
func likelyMatch(ratingTeam string, candidates []string) bool {
	target := normalizeName(ratingTeam)
	if target == "" {
		return false
	}
	for _, candidate := range candidates {
		name := normalizeName(candidate)
		if name == "" {
			continue
		}
		if name == target || strings.Contains(name, target) || strings.Contains(target, name) {
			return true
		}
	}
	return false
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lowercases and strips diacritics, e.g. "Atlético" -> "atletico".
func normalizeName(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}

func isPlaceholderName(name string) bool {
	return strings.Contains(name, "/") ||
		strings.Contains(name, "Winner") ||
		strings.Contains(name, "Loser")
}
