package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/storyboard-backend/internal/platform/logger"
)

// ProgressEvent is the wire shape published on every pipeline state
// transition.
type ProgressEvent struct {
	RunID  string    `json:"runId"`
	Stage  string    `json:"stage"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// ProgressBus fans pipeline progress out to a Redis channel so a frontend
// can stream it. Publishing never fails the caller.
type ProgressBus interface {
	Publish(ctx context.Context, runID string, stage string, status string)
	Subscribe(ctx context.Context, onEvent func(ProgressEvent)) error
	Close() error
}

type progressBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewProgressBus connects using REDIS_ADDR; the channel defaults to
// storyboard_progress.
func NewProgressBus(log *logger.Logger) (ProgressBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_CHANNEL"))
	if ch == "" {
		ch = "storyboard_progress"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &progressBus{
		log:     log.With("service", "RedisProgressBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *progressBus) Publish(ctx context.Context, runID string, stage string, status string) {
	if b == nil || b.rdb == nil {
		return
	}
	raw, err := json.Marshal(ProgressEvent{RunID: runID, Stage: stage, Status: status, At: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.log.Warn("Progress publish failed", "run_id", runID, "stage", stage, "error", err.Error())
	}
}

func (b *progressBus) Subscribe(ctx context.Context, onEvent func(ProgressEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("progress bus not initialized")
	}
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var ev ProgressEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("Progress event decode failed", "error", err.Error())
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

func (b *progressBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
