package match

import "sort"

// Sort orders matches for API reads: kick-off time (ascending for fixtures,
// descending for results), then competition weight (heaviest first),
// competition name and sub-heading, then home team name.
func Sort(matches []*Match, dateAscending bool) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]

		if !a.DateTimeUTC.Equal(b.DateTimeUTC) {
			if dateAscending {
				return a.DateTimeUTC.Before(b.DateTimeUTC)
			}
			return a.DateTimeUTC.After(b.DateTimeUTC)
		}
		if a.Competition.Weight != b.Competition.Weight {
			return a.Competition.Weight > b.Competition.Weight
		}
		if a.Competition.Name != b.Competition.Name {
			return a.Competition.Name < b.Competition.Name
		}
		if a.Competition.SubHeading != b.Competition.SubHeading {
			return a.Competition.SubHeading < b.Competition.SubHeading
		}
		return a.HomeTeam.Names.DisplayName < b.HomeTeam.Names.DisplayName
	})
}
