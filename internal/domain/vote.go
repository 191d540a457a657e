package domain

import "time"

// Rating bounds, inclusive
const (
	MinRating = 1
	MaxRating = 5
)

// Vote is one team's rating of another team
type Vote struct {
	ID          string    `json:"id"`
	TeamID      string    `json:"team_id"`       // target
	VoterTeamID string    `json:"voter_team_id"` // who cast it
	Rating      int       `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidRating reports whether rating lies in [MinRating, MaxRating]
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// VoteRequest submits a rating for the presenting team
type VoteRequest struct {
	Rating int `json:"rating"`
}

// RatingUpdate is the admin override body
type RatingUpdate struct {
	Rating int `json:"rating"`
}

// Eligibility describes whether a voter may rate a target
type Eligibility struct {
	TargetTeamID string `json:"target_team_id"`
	VoterTeamID  string `json:"voter_team_id"`
	HasVoted     bool   `json:"has_voted"`
	CanVote      bool   `json:"can_vote"`
	Reason       string `json:"reason,omitempty"`
}

// VoteResponse is returned after a successful submission
type VoteResponse struct {
	Vote    *Vote  `json:"vote"`
	Message string `json:"message"`
}
