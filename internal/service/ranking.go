package service

import (
	"math"
	"sort"

	"eventvote/internal/domain"
)

// VoteCount returns how many votes target teamID
func VoteCount(votes []domain.Vote, teamID string) int {
	count := 0
	for i := range votes {
		if votes[i].TeamID == teamID {
			count++
		}
	}
	return count
}

// AverageRating returns the mean rating received by teamID rounded to one
// decimal, or exactly 0 when the team has no votes
func AverageRating(votes []domain.Vote, teamID string) float64 {
	sum, count := 0, 0
	for i := range votes {
		if votes[i].TeamID == teamID {
			sum += votes[i].Rating
			count++
		}
	}
	return roundedMean(sum, count)
}

// roundedMean rounds half away from zero at the first decimal. Scaling the
// integer sum before dividing keeps x.x5 means exact.
func roundedMean(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum)*10/float64(count)) / 10
}

type teamTally struct {
	sum   int
	count int
}

// Rank orders every team by average rating desc, then vote count desc, then
// name ascending (byte order). The sort is stable, so full ties keep the
// input order. Ranks are 1-based positions.
func Rank(teams []domain.Team, votes []domain.Vote) []domain.LeaderboardEntry {
	tallies := make(map[string]*teamTally, len(teams))
	for _, team := range teams {
		tallies[team.ID] = &teamTally{}
	}
	for _, vote := range votes {
		if t, ok := tallies[vote.TeamID]; ok {
			t.sum += vote.Rating
			t.count++
		}
	}

	entries := make([]domain.LeaderboardEntry, len(teams))
	for i, team := range teams {
		t := tallies[team.ID]
		entries[i] = domain.LeaderboardEntry{
			Team:          team,
			AverageRating: roundedMean(t.sum, t.count),
			VoteCount:     t.count,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		return a.Team.Name < b.Team.Name
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankTeams returns only the ordered teams
func RankTeams(teams []domain.Team, votes []domain.Vote) []domain.Team {
	entries := Rank(teams, votes)
	ranked := make([]domain.Team, len(entries))
	for i, entry := range entries {
		ranked[i] = entry.Team
	}
	return ranked
}
