package realtime

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"

	"github.com/venuecast/venuecast-backend/internal/playback"
	pkgerrors "github.com/venuecast/venuecast-backend/pkg/errors"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/redis"
)

// Publisher sends an encoded message on a fanout channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscriber opens a pub/sub subscription on the given channels.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error)
}

// BridgeParams groups dependencies for the fanout bridge.
type BridgeParams struct {
	Publisher  Publisher
	Subscriber Subscriber
	Hub        *Hub
	Log        *logger.Logger
}

// Bridge connects domain events to every websocket client across all API
// instances. Events go out through Redis pub/sub; Run on each instance
// re-broadcasts what arrives into the local hub. When publishing fails the
// event is delivered to the local hub directly so a single node without
// Redis connectivity keeps its own screens current.
type Bridge struct {
	pub  Publisher
	subs Subscriber
	hub  *Hub
	logg *logger.Logger
}

// NewBridge builds a bridge with the required dependencies.
func NewBridge(params BridgeParams) (*Bridge, error) {
	if params.Publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "publisher is required")
	}
	if params.Hub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hub is required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Bridge{
		pub:  params.Publisher,
		subs: params.Subscriber,
		hub:  params.Hub,
		logg: params.Log,
	}, nil
}

// QueueChanged hints staff consoles that the pending queue moved.
func (b *Bridge) QueueChanged(ctx context.Context) {
	b.publish(ctx, redis.ChannelQueue, Message{Type: MessageTypeQueueChanged})
}

// RankingsChanged hints displays that the leaderboard moved.
func (b *Bridge) RankingsChanged(ctx context.Context) {
	b.publish(ctx, redis.ChannelRankings, Message{Type: MessageTypeRankingsChanged})
}

// SettingsChanged hints displays to re-fetch their configuration.
func (b *Bridge) SettingsChanged(ctx context.Context) {
	b.publish(ctx, redis.ChannelSettings, Message{Type: MessageTypeSettingsChanged})
}

// PlaybackChanged pushes the full playback snapshot inline.
func (b *Bridge) PlaybackChanged(ctx context.Context, state playback.StateDTO) {
	b.publish(ctx, redis.ChannelPlayback, Message{Type: MessageTypePlaybackState, Data: state})
}

// Run subscribes to every fanout channel and feeds arriving messages into
// the local hub until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if b.subs == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscriber is required to run the bridge")
	}
	sub, err := b.subs.Subscribe(ctx,
		redis.ChannelQueue,
		redis.ChannelPlayback,
		redis.ChannelSettings,
		redis.ChannelRankings,
	)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe to fanout channels")
	}
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(ctx, []byte(msg.Payload))
		}
	}
}

func (b *Bridge) publish(ctx context.Context, channel string, message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		b.logg.Error(ctx, "encoding fanout message", err)
		return
	}
	if err := b.pub.Publish(ctx, channel, payload); err != nil {
		b.logg.Error(ctx, "publishing fanout message", err)
		b.hub.Broadcast(ctx, message)
	}
}

func (b *Bridge) dispatch(ctx context.Context, payload []byte) {
	var message Message
	if err := json.Unmarshal(payload, &message); err != nil {
		b.logg.Warn(ctx, "discarding malformed fanout payload")
		return
	}
	b.hub.Broadcast(ctx, message)
}
