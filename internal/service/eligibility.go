package service

import "eventvote/internal/domain"

// HasVoted reports whether votes holds a rating of target cast by voter
func HasVoted(votes []domain.Vote, targetTeamID, voterTeamID string) bool {
	for i := range votes {
		if votes[i].TeamID == targetTeamID && votes[i].VoterTeamID == voterTeamID {
			return true
		}
	}
	return false
}

// CanVote reports whether voter may still rate target
func CanVote(votes []domain.Vote, targetTeamID, voterTeamID string) bool {
	return CheckEligibility(votes, targetTeamID, voterTeamID) == nil
}

// CheckEligibility returns domain.ErrSelfVote or domain.ErrAlreadyVoted when
// voter may not rate target, nil otherwise
func CheckEligibility(votes []domain.Vote, targetTeamID, voterTeamID string) error {
	if targetTeamID == voterTeamID {
		return domain.ErrSelfVote
	}
	if HasVoted(votes, targetTeamID, voterTeamID) {
		return domain.ErrAlreadyVoted
	}
	return nil
}

// EvaluateEligibility builds the eligibility view shown to a voter
func EvaluateEligibility(votes []domain.Vote, targetTeamID, voterTeamID string) domain.Eligibility {
	err := CheckEligibility(votes, targetTeamID, voterTeamID)
	return domain.Eligibility{
		TargetTeamID: targetTeamID,
		VoterTeamID:  voterTeamID,
		HasVoted:     HasVoted(votes, targetTeamID, voterTeamID),
		CanVote:      err == nil,
		Reason:       domain.EligibilityReason(err),
	}
}

// TeamVotes returns the votes targeting teamID in collection order
func TeamVotes(votes []domain.Vote, targetTeamID string) []domain.Vote {
	out := make([]domain.Vote, 0)
	for _, vote := range votes {
		if vote.TeamID == targetTeamID {
			out = append(out, vote)
		}
	}
	return out
}
