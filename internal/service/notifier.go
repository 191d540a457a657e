package service

import (
	"context"
	"sync"

	"eventvote/internal/metrics"
	"eventvote/pkg/redis"

	"go.uber.org/zap"
)

const subscriberBuffer = 16

// LocalNotifier delivers change events to subscribers in the same process
type LocalNotifier struct {
	mu          sync.RWMutex
	subscribers map[chan Collection]struct{}
	logger      *zap.Logger
}

// NewLocalNotifier creates an in-process notifier
func NewLocalNotifier(logger *zap.Logger) *LocalNotifier {
	return &LocalNotifier{
		subscribers: make(map[chan Collection]struct{}),
		logger:      logger,
	}
}

// Publish implements ChangeNotifier. A subscriber whose buffer is full
// already has a refresh pending, so the event is dropped for it.
func (n *LocalNotifier) Publish(ctx context.Context, collection Collection) {
	metrics.ChangeEvents.WithLabelValues(string(collection)).Inc()

	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.subscribers {
		select {
		case ch <- collection:
		default:
			n.logger.Debug("Dropped change event for slow subscriber", zap.String("collection", string(collection)))
		}
	}
}

// Subscribe implements ChangeNotifier
func (n *LocalNotifier) Subscribe(ctx context.Context) (<-chan Collection, func()) {
	ch := make(chan Collection, subscriberBuffer)

	n.mu.Lock()
	n.subscribers[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subscribers, ch)
			n.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

// RedisNotifier publishes change events on a Redis channel so every
// instance behind a load balancer refreshes its live clients
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier creates a notifier on the environment's change channel
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		channel: client.KeyBuilder.KeyChangeChannel(),
		logger:  logger,
	}
}

// Publish implements ChangeNotifier
func (n *RedisNotifier) Publish(ctx context.Context, collection Collection) {
	metrics.ChangeEvents.WithLabelValues(string(collection)).Inc()

	if err := n.client.Publish(ctx, n.channel, string(collection)); err != nil {
		n.logger.Warn("Failed to publish change event",
			zap.String("collection", string(collection)),
			zap.Error(err))
	}
}

// Subscribe implements ChangeNotifier
func (n *RedisNotifier) Subscribe(ctx context.Context) (<-chan Collection, func()) {
	ctx, stop := context.WithCancel(ctx)
	sub := n.client.Subscribe(ctx, n.channel)
	out := make(chan Collection, subscriberBuffer)

	// Wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed
	if _, err := sub.Receive(ctx); err != nil {
		n.logger.Warn("Failed to confirm change subscription", zap.Error(err))
	}

	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- Collection(msg.Payload):
				default:
				}
			}
		}
	}()

	return out, stop
}
