package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultViewWindow = time.Hour

// ViewCounter counts question views. A viewer is counted at most once per
// window per question.
//
// Keys:
//
//	views:<question_id>              total count
//	views:seen:<question_id>:<viewer> dedup marker, expires after window
type ViewCounter struct {
	client *redis.Client
	window time.Duration
}

func NewViewCounter(client *redis.Client, window time.Duration) *ViewCounter {
	if window <= 0 {
		window = defaultViewWindow
	}
	return &ViewCounter{client: client, window: window}
}

// RecordView marks viewer as having seen the question and returns the total.
func (v *ViewCounter) RecordView(ctx context.Context, questionID, viewer string) (int64, error) {
	first, err := v.client.SetNX(ctx, v.seenKey(questionID, viewer), "1", v.window).Result()
	if err != nil {
		return 0, fmt.Errorf("view dedup: %w", err)
	}
	if first {
		n, err := v.client.Incr(ctx, v.countKey(questionID)).Result()
		if err != nil {
			return 0, fmt.Errorf("view incr: %w", err)
		}
		return n, nil
	}

	n, err := v.client.Get(ctx, v.countKey(questionID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("view get: %w", err)
	}
	return n, nil
}

// Views returns the count for each id; ids never viewed map to zero.
func (v *ViewCounter) Views(ctx context.Context, questionIDs ...string) (map[string]int64, error) {
	out := make(map[string]int64, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(questionIDs))
	for i, id := range questionIDs {
		keys[i] = v.countKey(id)
	}
	vals, err := v.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("view mget: %w", err)
	}
	for i, val := range vals {
		s, ok := val.(string)
		if !ok {
			out[questionIDs[i]] = 0
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			continue
		}
		out[questionIDs[i]] = n
	}
	return out, nil
}

func (v *ViewCounter) countKey(questionID string) string {
	return "views:" + questionID
}

func (v *ViewCounter) seenKey(questionID, viewer string) string {
	return fmt.Sprintf("views:seen:%s:%s", questionID, viewer)
}
