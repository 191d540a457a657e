package domain

import "time"

// PresentingTeam is the cached reference to the team on stage
type PresentingTeam struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VotingSession is the singleton voting window state.
//
//	Idle:       PresentingTeam == nil
//	Presenting: PresentingTeam != nil && IsActive
//	Ended:      PresentingTeam != nil && !IsActive, until the clear delay passes
type VotingSession struct {
	PresentingTeam *PresentingTeam `json:"presenting_team"`
	IsActive       bool            `json:"is_active"`
	EndTime        *time.Time      `json:"end_time"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SessionPhase names the voting window state
type SessionPhase string

const (
	PhaseIdle       SessionPhase = "idle"
	PhasePresenting SessionPhase = "presenting"
	PhaseEnded      SessionPhase = "ended"
)

// Phase derives the state machine position
func (s VotingSession) Phase() SessionPhase {
	switch {
	case s.PresentingTeam == nil:
		return PhaseIdle
	case s.IsActive:
		return PhasePresenting
	default:
		return PhaseEnded
	}
}

// AcceptsVotes reports whether votes for the presenting team are open
func (s VotingSession) AcceptsVotes() bool {
	return s.IsActive && s.PresentingTeam != nil
}

// StartVotingRequest selects the team to present
type StartVotingRequest struct {
	TeamID string `json:"team_id"`
}

// VisibilityRequest toggles the public leaderboard
type VisibilityRequest struct {
	IsVisible bool `json:"is_visible"`
}
