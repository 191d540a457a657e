package service

import "context"

// Collection names a group of records whose change triggers a live refresh
type Collection string

const (
	CollectionTeams    Collection = "teams"
	CollectionVotes    Collection = "votes"
	CollectionSession  Collection = "session"
	CollectionSettings Collection = "settings"
)

// ChangeNotifier fans store change events out to subscribers
type ChangeNotifier interface {
	// Publish announces that collection changed. Failures are logged, not returned.
	Publish(ctx context.Context, collection Collection)

	// Subscribe delivers change events until ctx is cancelled or the returned
	// cancel function is called
	Subscribe(ctx context.Context) (<-chan Collection, func())
}

// Services aggregates the application services
type Services struct {
	Auth        *AuthService
	Teams       *TeamService
	Voting      *VotingService
	Session     *SessionService
	Leaderboard *LeaderboardService
	Admin       *AdminService
	Notifier    ChangeNotifier
}
