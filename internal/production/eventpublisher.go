package production

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/comalice/riskbox/internal/core"
)

// DefaultChannel is the Redis Pub/Sub channel snapshots are published on.
const DefaultChannel = "riskbox:snapshots"

// PublishedSnapshot bundles a root snapshot with the time it was published.
type PublishedSnapshot struct {
	Snapshot  core.Snapshot `json:"snapshot"`
	Timestamp time.Time     `json:"timestamp"`
}

// SnapshotPublisher ships settled snapshots out of the process.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap core.Snapshot) error
	Close() error
}

// ChannelPublisher forwards snapshots to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch chan<- PublishedSnapshot
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- PublishedSnapshot) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, snap core.Snapshot) error {
	select {
	case p.ch <- PublishedSnapshot{Snapshot: snap, Timestamp: time.Now()}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil // drop
	}
}

func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

// RedisPublisher publishes snapshots as JSON on a Redis Pub/Sub channel.
type RedisPublisher struct {
	client  *backend.Client
	channel string
	owned   bool
}

type RedisOption func(*RedisPublisher)

// WithChannel overrides DefaultChannel.
func WithChannel(channel string) RedisOption {
	return func(p *RedisPublisher) {
		p.channel = channel
	}
}

// NewRedisPublisher connects to the Redis server at address.
func NewRedisPublisher(address, password string, db int, opts ...RedisOption) *RedisPublisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	p := NewRedisPublisherFromClient(rdb, opts...)
	p.owned = true
	return p
}

// NewRedisPublisherFromClient publishes through an existing client. Close leaves
// the client open.
func NewRedisPublisherFromClient(client *backend.Client, opts ...RedisOption) *RedisPublisher {
	p := &RedisPublisher{client: client, channel: DefaultChannel}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the Pub/Sub channel name.
func (p *RedisPublisher) Channel() string { return p.channel }

func (p *RedisPublisher) Publish(ctx context.Context, snap core.Snapshot) error {
	payload, err := json.Marshal(PublishedSnapshot{Snapshot: snap, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.client.Close()
}

// Attach publishes every snapshot sys emits. Publish failures are logged and do
// not affect the system. The returned func detaches.
func Attach(sys *core.System, pub SnapshotPublisher, logger *slog.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}
	return sys.Subscribe(func(snap core.Snapshot) {
		if err := pub.Publish(context.Background(), snap); err != nil {
			logger.Warn("snapshot publish failed", "actor", snap.ID, "err", err)
		}
	})
}
