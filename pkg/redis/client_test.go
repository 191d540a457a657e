package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient("redis://"+mr.Addr(), "test", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "Invalid scheme", url: "invalid://url"},
		{name: "Empty URL", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", nil)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}

	t.Run("Unreachable server", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()

		client, err := NewClient("redis://"+addr, "test", nil)
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestClient_SetNX(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	key := client.KeyBuilder.KeyVoteLock("team-a", "team-b")

	ok, err := client.SetNX(ctx, key, "1", TTLVoteLock)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, key, "1", TTLVoteLock)
	require.NoError(t, err)
	assert.False(t, ok, "second acquisition of the same lock must fail")

	mr.FastForward(TTLVoteLock + time.Second)

	ok, err = client.SetNX(ctx, key, "1", TTLVoteLock)
	require.NoError(t, err)
	assert.True(t, ok, "lock is free again after its TTL")
}

func TestClient_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()

	require.NoError(t, mr.Set("test:key1", "value1"))
	require.NoError(t, mr.Set("test:key2", "value2"))

	require.NoError(t, client.Delete(ctx, "test:key1", "test:missing"))
	assert.False(t, mr.Exists("test:key1"))
	assert.True(t, mr.Exists("test:key2"))
}

func TestClient_PublishSubscribe(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	channel := client.KeyBuilder.KeyChangeChannel()

	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription confirmation before publishing
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, channel, "votes"))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, channel, msg.Channel)
		assert.Equal(t, "votes", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)

	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestPrefixForLog(t *testing.T) {
	assert.Equal(t, "short", prefixForLog("short"))
	long := "prod:vote:lock:abcdefghijklmnopqrstuvwxyz"
	assert.Equal(t, long[:24]+"…", prefixForLog(long))
}
