package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardiopredict/cardiopredict/internal/model"
)

const (
	predictionListKeyPrefix        = "predictions:owner:"
	predictionListGenerationPrefix = "predictions:gen:"

	// DefaultPredictionListTTL bounds staleness if an invalidation is lost.
	DefaultPredictionListTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func predictionListKey(ownerID int64) string {
	return predictionListKeyPrefix + strconv.FormatInt(ownerID, 10)
}

func predictionListGenerationKey(ownerID int64) string {
	return predictionListGenerationPrefix + strconv.FormatInt(ownerID, 10)
}

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1].
// A missing generation counts as "0".
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// GetPredictionList returns the cached predictions of ownerID.
// Returns ErrCacheMiss if nothing is cached.
func (c *Cache) GetPredictionList(ctx context.Context, ownerID int64) ([]*model.Prediction, error) {
	data, err := c.client.Get(ctx, predictionListKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var predictions []*model.Prediction
	if err := json.Unmarshal(data, &predictions); err != nil {
		// Corrupted entry - drop it and treat as miss
		_ = c.client.Del(ctx, predictionListKey(ownerID)).Err()
		return nil, ErrCacheMiss
	}

	return predictions, nil
}

// PredictionListGeneration returns the invalidation counter of ownerID.
// Read it before loading the list from the store and pass it to
// SetPredictionList.
func (c *Cache) PredictionListGeneration(ctx context.Context, ownerID int64) (int64, error) {
	gen, err := c.client.Get(ctx, predictionListGenerationKey(ownerID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// SetPredictionList caches the predictions of ownerID if no invalidation
// happened since generation was read. Returns false when the write was
// skipped as stale.
func (c *Cache) SetPredictionList(ctx context.Context, ownerID, generation int64, predictions []*model.Prediction) (bool, error) {
	data, err := json.Marshal(predictions)
	if err != nil {
		return false, fmt.Errorf("marshal predictions: %w", err)
	}

	keys := []string{predictionListGenerationKey(ownerID), predictionListKey(ownerID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys,
		strconv.FormatInt(generation, 10), data, DefaultPredictionListTTL.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set failed: %w", err)
	}
	return stored == 1, nil
}

// InvalidatePredictionList bumps the generation of ownerID and drops the
// cached list, so reads that started earlier cannot repopulate it.
// Called after every create or delete by that owner.
func (c *Cache) InvalidatePredictionList(ctx context.Context, ownerID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, predictionListGenerationKey(ownerID))
		pipe.Del(ctx, predictionListKey(ownerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}
