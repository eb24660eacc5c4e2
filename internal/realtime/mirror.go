package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisMirror publishes every broadcast event onto one Redis channel so
// external consumers (dashboards, analytics) can follow the session without
// holding a WebSocket. Publish-only: the session is single-instance and the
// in-process hub remains the sole delivery path to clients.
type RedisMirror struct {
	rdb     *redis.Client
	channel string
}

// NewRedisMirror creates a mirror publishing to the given channel.
func NewRedisMirror(rdb *redis.Client, channel string, logger *zap.Logger) *RedisMirror {
	logger.Info("broadcast mirror enabled", zap.String("channel", channel))
	return &RedisMirror{rdb: rdb, channel: channel}
}

type mirrorEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// PublishEvent implements Publisher.
func (m *RedisMirror) PublishEvent(event string, payload []byte) error {
	body, err := json.Marshal(mirrorEnvelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.rdb.Publish(ctx, m.channel, body).Err()
}
