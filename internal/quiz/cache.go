package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gokatarajesh/quiz-api/internal/domain"
)

const defaultCacheTTL = 10 * time.Minute

// QuestionCache stores the full question set of a quiz, correct options
// included. It is internal and never served directly.
//
// Entries are keyed by a per-quiz generation. Readers take the generation
// before loading from the store and write under it; Invalidate moves the
// generation forward, so a set loaded before a change is never read again.
type QuestionCache interface {
	Generation(ctx context.Context, quizID uuid.UUID) (int64, error)
	// Get reports ok=false on a miss.
	Get(ctx context.Context, quizID uuid.UUID, gen int64) (questions []domain.Question, ok bool, err error)
	Set(ctx context.Context, quizID uuid.UUID, gen int64, questions []domain.Question) error
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

// RedisCache is the Redis-backed QuestionCache.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ QuestionCache = (*RedisCache)(nil)

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(quizID uuid.UUID, gen int64) string {
	return "quiz:questions:" + quizID.String() + ":" + strconv.FormatInt(gen, 10)
}

func generationKey(quizID uuid.UUID) string {
	return "quiz:questions:" + quizID.String() + ":gen"
}

// Generation returns 0 for a quiz that was never invalidated.
func (c *RedisCache) Generation(ctx context.Context, quizID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, quizID uuid.UUID, gen int64) ([]domain.Question, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(quizID, gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false, err
	}
	return questions, true, nil
}

func (c *RedisCache) Set(ctx context.Context, quizID uuid.UUID, gen int64, questions []domain.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(quizID, gen), data, c.ttl).Err()
}

// Invalidate bumps the generation. Entries under older generations expire
// on their TTL.
func (c *RedisCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return c.client.Incr(ctx, generationKey(quizID)).Err()
}

// NopCache always misses. It is used when Redis is not configured.
type NopCache struct{}

func (NopCache) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func (NopCache) Get(context.Context, uuid.UUID, int64) ([]domain.Question, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(context.Context, uuid.UUID, int64, []domain.Question) error { return nil }

func (NopCache) Invalidate(context.Context, uuid.UUID) error { return nil }
