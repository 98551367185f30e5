package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"campusmate/internal/model"
)

// QuizHistoryCache keeps each user's quiz history in Redis for a short TTL.
// Saving a result marks the key dirty so the next list goes to MySQL; the
// dirty marker expires after the async persist has had time to land.
type QuizHistoryCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewQuizHistoryCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *QuizHistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &QuizHistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *QuizHistoryCache) GetHistory(ctx context.Context, userID uint) ([]model.QuizHistory, bool, error) {
	raw, err := c.client.Get(ctx, c.historyKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get quiz history failed: %w", err)
	}

	var history []model.QuizHistory
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached quiz history failed: %w", err)
	}
	return history, true, nil
}

func (c *QuizHistoryCache) SetHistory(ctx context.Context, userID uint, history []model.QuizHistory) error {
	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal quiz history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(userID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set quiz history failed: %w", err)
	}
	return nil
}

func (c *QuizHistoryCache) DeleteHistory(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.historyKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete quiz history failed: %w", err)
	}
	return nil
}

func (c *QuizHistoryCache) MarkDirty(ctx context.Context, userID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *QuizHistoryCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *QuizHistoryCache) historyKey(userID uint) string {
	return fmt.Sprintf("quiz:history:%d", userID)
}

func (c *QuizHistoryCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("quiz:history:dirty:%d", userID)
}
