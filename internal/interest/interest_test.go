package interest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skynolimit/topscores/internal/match"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/store"
	"github.com/skynolimit/topscores/internal/teams"
)

func fixture(compName, subHeading, home, away string) *match.Match {
	return &match.Match{
		ID: "m1",
		Competition: match.Competition{
			Name: compName, SubHeading: subHeading,
		},
		HomeTeam: match.TeamSide{
			Names: match.TeamNames{DisplayName: home, FullName: home},
		},
		AwayTeam: match.TeamSide{
			Names: match.TeamNames{DisplayName: away, FullName: away},
		},
	}
}

func TestCompetitionNameMatchIsCaseInsensitive(t *testing.T) {
	m := fixture("Premier League", "", "Arsenal", "Chelsea")
	p := &profile.Profile{DeviceID: "d1", Competitions: []string{"premier league"}}

	assert.True(t, IsOfInterest(m, p, nil))
}

func TestCompetitionSubHeadingConcatenation(t *testing.T) {
	m := fixture("Champions League", "Semi-finals", "Inter", "Milan")

	matched := &profile.Profile{DeviceID: "d1", Competitions: []string{"Champions League: Semi-finals"}}
	assert.True(t, IsOfInterest(m, matched, nil))

	plain := &profile.Profile{DeviceID: "d1", Competitions: []string{"Champions League"}}
	assert.True(t, IsOfInterest(m, plain, nil))

	other := &profile.Profile{DeviceID: "d1", Competitions: []string{"Champions League: Final"}}
	assert.False(t, IsOfInterest(m, other, nil))
}

func TestAllMatchesSuffixStripped(t *testing.T) {
	m := fixture("Premier League", "", "Arsenal", "Chelsea")
	p := &profile.Profile{DeviceID: "d1", Competitions: []string{"Premier League: All matches"}}

	assert.True(t, IsOfInterest(m, p, nil))
}

func TestTopTeamsLabelRequiresTopTeamPlaying(t *testing.T) {
	p := &profile.Profile{DeviceID: "d1", Competitions: []string{"Premier League: Top teams"}}
	topTeams := []string{"Arsenal", "Liverpool"}

	withTop := fixture("Premier League", "", "Arsenal", "Burnley")
	assert.True(t, IsOfInterest(withTop, p, topTeams))

	withoutTop := fixture("Premier League", "", "Burnley", "Brentford")
	assert.False(t, IsOfInterest(withoutTop, p, topTeams))

	// Top-teams label for one competition must not leak into another.
	otherComp := fixture("LaLiga", "", "Arsenal", "Burnley")
	assert.False(t, IsOfInterest(otherComp, p, topTeams))
}

func TestElClasico(t *testing.T) {
	p := &profile.Profile{DeviceID: "d1", Competitions: []string{"El Clasico"}}

	clasico := fixture("LaLiga", "", "Real Madrid", "Barcelona")
	assert.True(t, IsOfInterest(clasico, p, nil))

	// Same clubs in a different competition do not count.
	cup := fixture("Champions League", "", "Real Madrid", "Barcelona")
	assert.False(t, IsOfInterest(cup, p, nil))

	// One of the two clubs is not enough.
	laLiga := fixture("LaLiga", "", "Real Madrid", "Sevilla")
	assert.False(t, IsOfInterest(laLiga, p, nil))
}

func TestFollowedTeamMatchesFullNameOnly(t *testing.T) {
	m := fixture("Premier League", "", "Wolves", "Chelsea")
	m.HomeTeam.Names.FullName = "Wolverhampton Wanderers"

	full := &profile.Profile{DeviceID: "d1", ClubTeams: []string{"wolverhampton wanderers"}}
	assert.True(t, IsOfInterest(m, full, nil))

	// Display names are not consulted for followed teams.
	display := &profile.Profile{DeviceID: "d1", ClubTeams: []string{"Wolves"}}
	assert.False(t, IsOfInterest(m, display, nil))
}

func TestFollowedTeamQualifierGuard(t *testing.T) {
	women := fixture("Premier League Women", "", "Arsenal", "Chelsea")
	youth := fixture("Premier League Under 21", "", "Arsenal", "Chelsea")
	senior := fixture("Premier League", "", "Arsenal", "Chelsea")

	follower := &profile.Profile{DeviceID: "d1", ClubTeams: []string{"Arsenal"}}
	assert.False(t, IsOfInterest(women, follower, nil))
	assert.False(t, IsOfInterest(youth, follower, nil))
	assert.True(t, IsOfInterest(senior, follower, nil))

	womenFollower := &profile.Profile{DeviceID: "d1", ClubTeams: []string{"Arsenal Women"}}
	assert.False(t, IsOfInterest(senior, womenFollower, nil))
}

func TestInternationalTeamsAlsoFollowed(t *testing.T) {
	m := fixture("World Cup", "", "France", "Brazil")
	p := &profile.Profile{DeviceID: "d1", InternationalTeams: []string{"France"}}

	assert.True(t, IsOfInterest(m, p, nil))
}

func TestNoInterestByDefault(t *testing.T) {
	m := fixture("Premier League", "", "Arsenal", "Chelsea")
	p := &profile.Profile{DeviceID: "d1"}

	assert.False(t, IsOfInterest(m, p, nil))
	assert.False(t, IsOfInterest(m, nil, nil))
	assert.False(t, IsOfInterest(nil, p, nil))
}

func TestIndexRecompute(t *testing.T) {
	ctx := context.Background()
	s := store.New(nil)
	profiles := profile.NewCache(nil, nil)
	registry := teams.NewRegistry(nil, 1500, nil, nil)
	ix := NewIndex(s, profiles, registry, nil)

	m := fixture("Premier League", "", "Arsenal", "Chelsea")
	m.Date = "2026-08-31"
	s.ApplyUpdate("m1", m)

	require.NoError(t, profiles.Put(ctx, &profile.Profile{
		DeviceID:     "d1",
		Competitions: []string{"Premier League"},
	}))
	require.NoError(t, profiles.Put(ctx, &profile.Profile{
		DeviceID:     "d2",
		Competitions: []string{"LaLiga"},
	}))

	ix.RecomputeForMatch("m1")
	assert.Equal(t, []string{"d1"}, s.InterestedUsers("m1"))

	// d2 switches allegiance; their set membership follows.
	ix.RecomputeForUser("d2", &profile.Profile{
		DeviceID:     "d2",
		Competitions: []string{"Premier League"},
	})
	assert.ElementsMatch(t, []string{"d1", "d2"}, s.InterestedUsers("m1"))

	// Removing the preference removes the interest.
	ix.RecomputeForUser("d1", &profile.Profile{DeviceID: "d1"})
	assert.Equal(t, []string{"d2"}, s.InterestedUsers("m1"))
}
