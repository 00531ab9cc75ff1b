package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"maintenance-triage/internal/common/logger"
)

const cacheKeyPrefix = "triage:llm:"

// CachedClassifier serves repeated prompts from Redis. Only successful replies are stored,
// and Redis errors never fail a classification.
type CachedClassifier struct {
	next   Classifier
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedClassifier(next Classifier, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedClassifier {
	return &CachedClassifier{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		logger: logger.Component(log, "llm-cache"),
	}
}

func (c *CachedClassifier) Classify(ctx context.Context, prompt Prompt) Result {
	key := CacheKey(prompt)

	cached, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var reply Reply
		if jsonErr := json.Unmarshal([]byte(cached), &reply); jsonErr == nil {
			return Result{Reply: &reply}
		}
		c.logger.Warn("Discarding unreadable cached reply", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Cache lookup failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	res := c.next.Classify(ctx, prompt)
	if !res.OK() {
		return res
	}

	data, err := json.Marshal(res.Reply)
	if err != nil {
		return res
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache store failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return res
}

// CacheKey is the SHA-256 of the rendered prompt.
func CacheKey(prompt Prompt) string {
	sum := sha256.Sum256([]byte(prompt.Text()))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
