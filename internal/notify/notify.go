// Package notify publishes interview lifecycle events. Delivery to people
// (mail, chat) is handled by whoever subscribes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "interview_events"

// RedisNotifier publishes each event as JSON on a pub/sub channel and keeps
// the most recent events in a capped list for subscribers that reconnect.
type RedisNotifier struct {
	rdb      *redis.Client
	channel  string
	backlog  string
	keepLast int64
}

func NewRedisNotifier(rdb *redis.Client, channel string, keepLast int64) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		rdb:      rdb,
		channel:  channel,
		backlog:  channel + ":recent",
		keepLast: keepLast,
	}
}

func (n *RedisNotifier) NotifyInterviewEvent(ctx context.Context, event model.InterviewEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pipe := n.rdb.Pipeline()
	pipe.Publish(ctx, n.channel, payload)
	if n.keepLast > 0 {
		pipe.LPush(ctx, n.backlog, payload)
		pipe.LTrim(ctx, n.backlog, 0, n.keepLast-1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Recent returns up to limit of the latest events, newest first.
func (n *RedisNotifier) Recent(ctx context.Context, limit int64) ([]model.InterviewEvent, error) {
	raw, err := n.rdb.LRange(ctx, n.backlog, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent events: %w", err)
	}
	out := make([]model.InterviewEvent, 0, len(raw))
	for _, r := range raw {
		var e model.InterviewEvent
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// LogNotifier writes events to the log. It is used when Redis is not
// configured.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) NotifyInterviewEvent(_ context.Context, event model.InterviewEvent) error {
	n.Logger.Info("interview event",
		zap.String("type", string(event.Type)),
		zap.String("interview_id", event.InterviewID.String()),
		zap.Time("scheduled_at", event.ScheduledAt),
		zap.Int("participants", len(event.ParticipantIDs)),
	)
	return nil
}
