package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-api/internal/domain"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCacheKeys(t *testing.T) {
	id := uuid.MustParse("0b7d8f1c-3a52-4e57-9a8b-2c5b1f0b9e11")
	assert.Equal(t, "quiz:questions:0b7d8f1c-3a52-4e57-9a8b-2c5b1f0b9e11:3", cacheKey(id, 3))
	assert.Equal(t, "quiz:questions:0b7d8f1c-3a52-4e57-9a8b-2c5b1f0b9e11:gen", generationKey(id))
}

func TestNopCacheAlwaysMisses(t *testing.T) {
	var c QuestionCache = NopCache{}
	id := uuid.New()

	require.NoError(t, c.Set(context.Background(), id, 0, nil))
	_, ok, err := c.Get(context.Background(), id, 0)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Invalidate(context.Background(), id))
}

func TestNewRedisCacheDefaultTTL(t *testing.T) {
	c := NewRedisCache(nil, 0)
	assert.Equal(t, defaultCacheTTL, c.ttl)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewRedisCache(rdb, time.Minute)
	ctx := context.Background()
	quizID := uuid.New()

	_, ok, err := c.Get(ctx, quizID, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	questions := []domain.Question{{
		ID:            uuid.New(),
		QuizID:        quizID,
		Text:          "What is 5 * 6?",
		Options:       []string{"30", "25", "36", "35"},
		CorrectOption: 0,
	}}
	require.NoError(t, c.Set(ctx, quizID, 0, questions))

	got, ok, err := c.Get(ctx, quizID, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, questions, got)
	assert.Equal(t, time.Minute, mr.TTL(cacheKey(quizID, 0)))

	mr.FastForward(time.Minute + time.Second)
	_, ok, err = c.Get(ctx, quizID, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheInvalidateMovesGeneration(t *testing.T) {
	_, rdb := newTestRedis(t)
	c := NewRedisCache(rdb, time.Minute)
	ctx := context.Background()
	quizID := uuid.New()

	gen, err := c.Generation(ctx, quizID)
	require.NoError(t, err)
	assert.Zero(t, gen)
	require.NoError(t, c.Set(ctx, quizID, gen, []domain.Question{{ID: uuid.New()}}))

	require.NoError(t, c.Invalidate(ctx, quizID))

	next, err := c.Generation(ctx, quizID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
	_, ok, err := c.Get(ctx, quizID, next)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheReportsStoreErrors(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewRedisCache(rdb, time.Minute)
	quizID := uuid.New()
	require.NoError(t, rdb.Ping(context.Background()).Err())
	mr.SetError("ERR injected failure")

	_, err := c.Generation(context.Background(), quizID)
	assert.Error(t, err)
	_, _, err = c.Get(context.Background(), quizID, 0)
	assert.Error(t, err)
}

func TestService_RedisCacheDropsSetLoadedBeforeBatch(t *testing.T) {
	_, rdb := newTestRedis(t)
	quizzes := new(mockQuizRepo)
	questions := new(mockQuestionRepo)
	svc := newTestService(quizzes, questions, NewRedisCache(rdb, time.Minute))

	owner := uuid.New()
	quizID := uuid.New()
	first := domain.Question{ID: uuid.New(), QuizID: quizID, Text: "What is 5 * 6?", Options: []string{"30", "25"}}
	appended := domain.Question{ID: uuid.New(), QuizID: quizID, Text: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectOption: 1}

	quizzes.On("Get", mock.Anything, quizID).Return(domain.Quiz{ID: quizID, CreatorID: owner}, nil)
	questions.On("Insert", mock.Anything, mock.Anything).Return(appended, nil).Once()
	questions.On("ListByQuiz", mock.Anything, quizID).
		Run(func(mock.Arguments) {
			_, err := svc.CreateQuestionsBatch(context.Background(), owner, quizID, mathInput().Questions[1:2])
			require.NoError(t, err)
		}).
		Return([]domain.Question{first}, nil).Once()
	questions.On("ListByQuiz", mock.Anything, quizID).
		Return([]domain.Question{first, appended}, nil).Once()

	_, err := svc.Questions(context.Background(), quizID)
	require.NoError(t, err)

	got, err := svc.Questions(context.Background(), quizID)
	require.NoError(t, err)
	assert.Equal(t, []domain.Question{first, appended}, got)
}
