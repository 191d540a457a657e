package service

import (
	"fmt"
	"testing"

	"eventvote/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func team(id, name string) domain.Team {
	return domain.Team{ID: id, Name: name}
}

func ratings(target string, rs ...int) []domain.Vote {
	votes := make([]domain.Vote, len(rs))
	for i, r := range rs {
		votes[i] = vote(target, fmt.Sprintf("%s-voter-%d", target, i), r)
	}
	return votes
}

func rankedIDs(entries []domain.LeaderboardEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Team.ID
	}
	return ids
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name     string
		ratings  []int
		expected float64
	}{
		{"no votes is exactly zero", nil, 0},
		{"single vote", []int{5}, 5.0},
		{"half", []int{4, 5}, 4.5},
		{"whole", []int{3, 4, 5}, 4.0},
		{"thirds round down", []int{1, 1, 2}, 1.3},
		{"thirds round up", []int{1, 2, 2}, 1.7},
		{"x.x5 rounds away from zero", []int{4, 4, 5, 4}, 4.3},
		{"4.35 rounds up", []int{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 4, 4, 4, 4, 4, 4, 4, 3, 3, 3}, 4.4},
		{"1.05 rounds up", append(ratings1(19), 2), 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			votes := ratings("x", tt.ratings...)
			assert.Equal(t, tt.expected, AverageRating(votes, "x"))
			assert.Equal(t, len(tt.ratings), VoteCount(votes, "x"))
		})
	}
}

func ratings1(n int) []int {
	rs := make([]int, n)
	for i := range rs {
		rs[i] = 1
	}
	return rs
}

func TestAverageRating_IgnoresOtherTargets(t *testing.T) {
	votes := append(ratings("x", 2, 2), ratings("y", 5)...)
	assert.Equal(t, 2.0, AverageRating(votes, "x"))
	assert.Equal(t, 0.0, AverageRating(votes, "z"))
	assert.Equal(t, 0, VoteCount(votes, "z"))
}

func TestRank_AverageIsPrimaryKey(t *testing.T) {
	teams := []domain.Team{team("a", "A"), team("b", "B"), team("c", "C")}
	votes := append(ratings("a", 4, 5), ratings("b", 5)...)

	entries := Rank(teams, votes)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"b", "a", "c"}, rankedIDs(entries))

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 5.0, entries[0].AverageRating)
	assert.Equal(t, 1, entries[0].VoteCount)
	assert.Equal(t, 4.5, entries[1].AverageRating)
	assert.Equal(t, 0.0, entries[2].AverageRating)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestRank_VoteCountBreaksAverageTie(t *testing.T) {
	teams := []domain.Team{team("d", "D"), team("a", "A")}
	votes := append(ratings("a", 3, 4, 5), ratings("d", 4, 4)...)

	assert.Equal(t, []string{"a", "d"}, rankedIDs(Rank(teams, votes)))
}

func TestRank_RoundedAverageTies(t *testing.T) {
	// 4.33 and 4.25 both round to 4.3; the larger count wins
	teams := []domain.Team{team("p", "P"), team("q", "Q")}
	votes := append(ratings("p", 4, 4, 5), ratings("q", 4, 4, 4, 5)...)

	entries := Rank(teams, votes)
	assert.Equal(t, 4.3, entries[0].AverageRating)
	assert.Equal(t, 4.3, entries[1].AverageRating)
	assert.Equal(t, []string{"q", "p"}, rankedIDs(entries))
}

func TestRank_NameBreaksRemainingTies(t *testing.T) {
	teams := []domain.Team{
		team("1", "beta"),
		team("2", "Beta"),
		team("3", "alpha"),
		team("4", "Alpha"),
	}

	// Byte order puts upper case first
	assert.Equal(t, []string{"4", "2", "3", "1"}, rankedIDs(Rank(teams, nil)))
}

func TestRank_StableForFullTies(t *testing.T) {
	teams := []domain.Team{team("first", "Same"), team("second", "Same"), team("third", "Same")}
	votes := append(ratings("first", 3), append(ratings("second", 3), ratings("third", 3)...)...)

	assert.Equal(t, []string{"first", "second", "third"}, rankedIDs(Rank(teams, votes)))
}

func TestRank_TotalOrderAndReproducible(t *testing.T) {
	teams := []domain.Team{
		team("a", "Alpha"), team("b", "Bravo"), team("c", "Charlie"),
		team("d", "Delta"), team("e", "Echo"), team("f", "Foxtrot"),
	}
	var votes []domain.Vote
	votes = append(votes, ratings("a", 5, 4)...)
	votes = append(votes, ratings("b", 4, 5)...)
	votes = append(votes, ratings("c", 3)...)
	votes = append(votes, ratings("d", 5)...)
	votes = append(votes, ratings("e", 1, 2, 3, 4, 5)...)

	first := Rank(teams, votes)
	for i := 0; i < 10; i++ {
		assert.Equal(t, rankedIDs(first), rankedIDs(Rank(teams, votes)))
	}

	seen := make(map[string]bool)
	for i, entry := range first {
		assert.Equal(t, i+1, entry.Rank)
		assert.False(t, seen[entry.Team.ID], "team ranked twice")
		seen[entry.Team.ID] = true

		if i == 0 {
			continue
		}
		prev := first[i-1]
		ordered := prev.AverageRating > entry.AverageRating ||
			(prev.AverageRating == entry.AverageRating && prev.VoteCount > entry.VoteCount) ||
			(prev.AverageRating == entry.AverageRating && prev.VoteCount == entry.VoteCount && prev.Team.Name <= entry.Team.Name)
		assert.True(t, ordered, "%s must not precede %s", prev.Team.Name, entry.Team.Name)
	}
	assert.Len(t, seen, len(teams))
	assert.Equal(t, []string{"d", "a", "b", "e", "c", "f"}, rankedIDs(first))
}

func TestRank_DeletedTeamDropsOut(t *testing.T) {
	teams := []domain.Team{team("x", "X"), team("y", "Y")}
	votes := append(ratings("x", 5, 5), ratings("y", 1)...)

	remaining := []domain.Team{team("y", "Y")}
	entries := Rank(remaining, votes)
	require.Len(t, entries, 1)
	assert.Equal(t, "y", entries[0].Team.ID)
	assert.Len(t, Rank(teams, votes), 2)
}

func TestRankTeams(t *testing.T) {
	teams := []domain.Team{team("a", "A"), team("b", "B")}
	ranked := RankTeams(teams, ratings("b", 2))
	assert.Equal(t, "b", ranked[0].ID)
	assert.Equal(t, "a", ranked[1].ID)
}
