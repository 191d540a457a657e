package domain

import "errors"

// Eligibility failures. Callers render these as a state, not an error.
var (
	ErrSelfVote     = errors.New("teams cannot vote for themselves")
	ErrAlreadyVoted = errors.New("you have already voted for this team")
	ErrVotingClosed = errors.New("voting is not open")
)

// Validation and lookup failures
var (
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrMissingField       = errors.New("required field is empty")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTeamNotFound       = errors.New("team not found")
	ErrVoteNotFound       = errors.New("vote not found")
	ErrAccountNotFound    = errors.New("account not found")
)

// IsEligibilityError reports whether err is a vote eligibility failure
func IsEligibilityError(err error) bool {
	return errors.Is(err, ErrSelfVote) ||
		errors.Is(err, ErrAlreadyVoted) ||
		errors.Is(err, ErrVotingClosed)
}

// EligibilityReason returns a stable machine-readable code for an eligibility failure
func EligibilityReason(err error) string {
	switch {
	case errors.Is(err, ErrSelfVote):
		return "self_vote"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrVotingClosed):
		return "voting_closed"
	default:
		return ""
	}
}
