package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"eventvote/internal/domain"
	"eventvote/internal/repository"
	"eventvote/internal/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type hubFixture struct {
	repos    *repository.Repositories
	notifier *service.LocalNotifier
	hub      *Hub
	server   *httptest.Server
}

func newHubFixture(t *testing.T, origins ...string) *hubFixture {
	t.Helper()
	return newWrappedHubFixture(t, nil, origins...)
}

// newWrappedHubFixture lets a test interpose on the snapshot source
func newWrappedHubFixture(t *testing.T, wrap func(SnapshotSource) SnapshotSource, origins ...string) *hubFixture {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	logger := zap.NewNop()
	repos, _ := repository.NewMemoryRepositories()
	notifier := service.NewLocalNotifier(logger)
	leaderboard := service.NewLeaderboardService(repos.Team, repos.Vote, repos.Settings, notifier, logger)

	var source SnapshotSource = leaderboard
	if wrap != nil {
		source = wrap(source)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(source, notifier, origins, logger)
	hub.Start(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
		cancel()
	})
	return &hubFixture{repos: repos, notifier: notifier, hub: hub, server: server}
}

func (f *hubFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	f := newHubFixture(t)
	require.NoError(t, f.repos.Team.CreateTeam(context.Background(), &domain.Team{Name: "a", Email: "a@example.com"}))

	conn := f.dial(t)
	msg := readMessage(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	require.NotNil(t, msg.Snapshot)
	assert.Len(t, msg.Snapshot.Teams, 1)
	assert.True(t, msg.Snapshot.LeaderboardVisible)

	assert.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastsOnChange(t *testing.T) {
	f := newHubFixture(t)
	ctx := context.Background()

	first := f.dial(t)
	second := f.dial(t)
	readMessage(t, first)
	readMessage(t, second)

	a := domain.Team{Name: "a", Email: "a@example.com"}
	b := domain.Team{Name: "b", Email: "b@example.com"}
	require.NoError(t, f.repos.Team.CreateTeam(ctx, &a))
	require.NoError(t, f.repos.Team.CreateTeam(ctx, &b))
	require.NoError(t, f.repos.Vote.CreateVote(ctx, &domain.Vote{TeamID: a.ID, VoterTeamID: b.ID, Rating: 4}))
	f.notifier.Publish(ctx, service.CollectionVotes)

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, "update", msg.Type)
		assert.Equal(t, "votes", msg.Collection)
		require.NotNil(t, msg.Snapshot)
		require.Len(t, msg.Snapshot.Leaderboard, 2)
		assert.Equal(t, a.ID, msg.Snapshot.Leaderboard[0].Team.ID)
		assert.Equal(t, 4.0, msg.Snapshot.Leaderboard[0].AverageRating)
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	f := newHubFixture(t)

	conn := f.dial(t)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	f := newHubFixture(t, "https://vote.example.com")
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://vote.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, "snapshot", readMessage(t, conn).Type)
}

type failingSource struct{}

func (failingSource) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	return nil, errors.New("store unavailable")
}

func TestHub_SnapshotFailure(t *testing.T) {
	hub := NewHub(failingSource{}, service.NewLocalNotifier(zap.NewNop()), []string{"*"}, zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
	assert.Equal(t, 0, hub.ClientCount())
}

// blockingSource holds the result of its first Snapshot call until released
type blockingSource struct {
	SnapshotSource
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snapshot, err := s.SnapshotSource.Snapshot(ctx)
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return snapshot, err
}

func TestHub_ChangeDuringConnectReachesClient(t *testing.T) {
	blocking := &blockingSource{entered: make(chan struct{}), release: make(chan struct{})}
	f := newWrappedHubFixture(t, func(src SnapshotSource) SnapshotSource {
		blocking.SnapshotSource = src
		return blocking
	})
	ctx := context.Background()

	dialed := make(chan *websocket.Conn, 1)
	go func() {
		url := "ws" + strings.TrimPrefix(f.server.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			close(dialed)
			return
		}
		dialed <- conn
	}()

	select {
	case <-blocking.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("connect snapshot was never requested")
	}

	// The store changes while the connecting client's snapshot is in flight
	require.NoError(t, f.repos.Team.CreateTeam(ctx, &domain.Team{Name: "late", Email: "late@example.com"}))
	f.notifier.Publish(ctx, service.CollectionTeams)
	time.Sleep(50 * time.Millisecond)
	close(blocking.release)

	var conn *websocket.Conn
	select {
	case c, ok := <-dialed:
		require.True(t, ok, "dial failed")
		conn = c
	case <-time.After(2 * time.Second):
		t.Fatal("dial did not complete")
	}
	defer conn.Close()

	var last Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(500*time.Millisecond)))
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		last = msg
	}
	require.NotNil(t, last.Snapshot, "client received no frames")
	assert.Len(t, last.Snapshot.Teams, 1, "last frame must reflect the change made during connect")
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", []string{"https://a.example"}))
	assert.True(t, originAllowed("https://a.example", []string{"https://a.example"}))
	assert.True(t, originAllowed("https://b.example", []string{"*"}))
	assert.False(t, originAllowed("https://b.example", []string{"https://a.example"}))
}
