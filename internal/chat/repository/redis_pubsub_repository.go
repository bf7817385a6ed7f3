package repository

import (
	"context"
	"encoding/json"
	"strings"

	"marketplace_chat_service/internal/chat/domain"
	"marketplace_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	roomChannelPrefix = "chat:room:"
	globalChannel     = "chat:global"
)

// RoomChannel redis channel of a conversation room
func RoomChannel(roomID string) string {
	return roomChannelPrefix + roomID
}

// LocalDelivery receive frames relayed from redis
type LocalDelivery interface {
	DeliverRoom(roomID string, frame []byte)
	DeliverAll(frame []byte)
}

// RedisPubSub definition redis pub/sub room bus
type RedisPubSub struct {
	client redis.UniversalClient
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client redis.UniversalClient) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// ToRoom publish ev to every process holding members of roomID
func (r *RedisPubSub) ToRoom(ctx context.Context, roomID string, ev domain.WSResponse) error {
	return r.publish(ctx, RoomChannel(roomID), ev)
}

// ToAll publish ev to every connection of every process
func (r *RedisPubSub) ToAll(ctx context.Context, ev domain.WSResponse) error {
	return r.publish(ctx, globalChannel, ev)
}

func (r *RedisPubSub) publish(ctx context.Context, channel string, ev domain.WSResponse) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe relay room and global channels into sink until ctx is done
func (r *RedisPubSub) Subscribe(ctx context.Context, sink LocalDelivery) error {
	sub := r.client.PSubscribe(ctx, roomChannelPrefix+"*", globalChannel)
	// wait for the subscription confirmation so early publishes are not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				dispatch(sink, m.Channel, []byte(m.Payload))
			case <-ctx.Done():
				logger.Log.Info("room bus subscription closed")
				return
			}
		}
	}()
	return nil
}

func dispatch(sink LocalDelivery, channel string, frame []byte) {
	switch {
	case channel == globalChannel:
		sink.DeliverAll(frame)
	case strings.HasPrefix(channel, roomChannelPrefix):
		sink.DeliverRoom(strings.TrimPrefix(channel, roomChannelPrefix), frame)
	default:
		logger.Log.Warn("room bus: unexpected channel", zap.String("channel", channel))
	}
}
