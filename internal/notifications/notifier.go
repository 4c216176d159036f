// Package notifications fans plan updates out to users' live websocket
// connections through Redis pub/sub, so every API instance can deliver
// events for writes made on any other instance.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"mealplanner/internal/middleware"
	"mealplanner/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	planChannelPrefix  = "plan:user:"
	planChannelPattern = planChannelPrefix + "*"
)

// Notifier publishes plan events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a Notifier. A nil client turns every publish into a
// no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PlanChannel derives the Redis channel name for a user's plan events.
func PlanChannel(userID uint) string {
	return planChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// ParsePlanChannel extracts the user ID from a plan channel name.
func ParsePlanChannel(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, planChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("not a plan channel: %s", channel)
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid plan channel: %s", channel)
	}
	return uint(id), nil
}

// PublishPlan sends event to the user's plan channel.
func (n *Notifier) PublishPlan(ctx context.Context, userID uint, event models.PlanEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal plan event: %w", err)
	}
	return n.rdb.Publish(ctx, PlanChannel(userID), payload).Err()
}

// StartPlanSubscriber subscribes to every user's plan channel and calls
// onMessage for each incoming payload until ctx is cancelled.
func (n *Notifier) StartPlanSubscriber(
	ctx context.Context, onMessage func(userID uint, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, planChannelPattern)
	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", planChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, err := ParsePlanChannel(msg.Channel)
				if err != nil {
					middleware.Logger.Warn("Ignoring plan message", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("PANIC in PlanSubscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(userID, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
