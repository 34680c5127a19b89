package kds

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/restaurant-till/utils"
)

// RedisBridge publishes notifications on a Redis channel so that every
// server instance delivers them to its own terminals.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBridge(client *redis.Client, prefix string, hub *Hub) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: prefix + ":kds",
		hub:     hub,
	}
}

// Notify implements services.Notifier. If Redis is unreachable the message
// is still delivered locally.
func (b *RedisBridge) Notify(tenantID uint, event string, payload interface{}) {
	msg := Message{
		TenantID: tenantID,
		Event:    event,
		Data:     payload,
		SentAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("kds: marshal message")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		utils.ErrorLogger.WithError(err).Warn("kds: redis publish failed, delivering locally")
		b.hub.deliverRaw(tenantID, event, data)
	}
}

// Listen forwards published messages to the local hub until ctx is done.
func (b *RedisBridge) Listen(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			var head struct {
				TenantID uint   `json:"tenant_id"`
				Event    string `json:"event"`
			}
			if err := json.Unmarshal([]byte(m.Payload), &head); err != nil || head.TenantID == 0 {
				utils.ErrorLogger.Warn("kds: ignoring malformed message")
				continue
			}
			b.hub.deliverRaw(head.TenantID, head.Event, []byte(m.Payload))
		}
	}
}
