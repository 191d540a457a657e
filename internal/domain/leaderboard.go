package domain

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	Team          Team    `json:"team"`
	AverageRating float64 `json:"average_rating"`
	VoteCount     int     `json:"vote_count"`
}

// Leaderboard is the public ranking response
type Leaderboard struct {
	Visible bool               `json:"visible"`
	Entries []LeaderboardEntry `json:"entries"`
}

// TeamStats aggregates one team's received votes
type TeamStats struct {
	Team          Team    `json:"team"`
	AverageRating float64 `json:"average_rating"`
	VoteCount     int     `json:"vote_count"`
	Votes         []Vote  `json:"votes"`
}

// Snapshot is the full state pushed to live subscribers
type Snapshot struct {
	Teams              []Team             `json:"teams"`
	Votes              []Vote             `json:"votes"`
	Leaderboard        []LeaderboardEntry `json:"leaderboard"`
	Session            VotingSession      `json:"session"`
	LeaderboardVisible bool               `json:"leaderboard_visible"`
}
