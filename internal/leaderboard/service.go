package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultTopN    = 10
	defaultChannel = "leaderboard:updates"
	defaultPrefix  = "lb:quiz"
	maxLimit       = 100
)

// Entry is one ranked user on a quiz leaderboard.
type Entry struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	UserName string    `json:"user_name"`
	Score    float64   `json:"score"`
}

// Update is published on the Pub/Sub channel after every recorded score.
type Update struct {
	QuizID uuid.UUID `json:"quiz_id"`
	UserID uuid.UUID `json:"user_id"`
	Score  float64   `json:"score"`
	Top    []Entry   `json:"top"`
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	TopN           int
	PubSubChannel  string
	RedisKeyPrefix string
}

// Service keeps each user's best score per quiz in a Redis sorted set and
// emits updates over Pub/Sub.
type Service struct {
	redis   redis.Cmdable
	logger  zerolog.Logger
	topN    int
	channel string
	prefix  string
}

// NewService constructs a leaderboard service instance.
func NewService(rdb redis.Cmdable, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	channel := opts.PubSubChannel
	if channel == "" {
		channel = defaultChannel
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Service{
		redis:   rdb,
		logger:  logger.With().Str("component", "leaderboard").Logger(),
		topN:    topN,
		channel: channel,
		prefix:  prefix,
	}
}

// Channel is the Pub/Sub channel updates are published on.
func (s *Service) Channel() string {
	return s.channel
}

// TopN is the default ranking size.
func (s *Service) TopN() int {
	return s.topN
}

// Record stores score for the user unless a better one is already ranked,
// then publishes the new top of the quiz. Publish failures are only logged.
func (s *Service) Record(ctx context.Context, quizID, userID uuid.UUID, userName string, score float64) error {
	pipe := s.redis.TxPipeline()
	pipe.ZAddGT(ctx, s.rankKey(quizID), redis.Z{Score: score, Member: userID.String()})
	pipe.HSet(ctx, s.namesKey(quizID), userID.String(), userName)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("update leaderboard %s: %w", quizID, err)
	}

	top, err := s.Top(ctx, quizID, s.topN)
	if err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to collect leaderboard update")
		return nil
	}
	data, err := json.Marshal(Update{QuizID: quizID, UserID: userID, Score: score, Top: top})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal leaderboard update")
		return nil
	}
	if err := s.redis.Publish(ctx, s.channel, data).Err(); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to publish leaderboard update")
	}
	return nil
}

// Top returns the best entries of a quiz, highest score first. limit is
// clamped to [1, 100]; zero or less means the configured TopN.
func (s *Service) Top(ctx context.Context, quizID uuid.UUID, limit int) ([]Entry, error) {
	limit = clampLimit(limit, s.topN)

	results, err := s.redis.ZRevRangeWithScores(ctx, s.rankKey(quizID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	if len(results) == 0 {
		return []Entry{}, nil
	}

	members := make([]string, 0, len(results))
	for _, z := range results {
		if m, ok := z.Member.(string); ok {
			members = append(members, m)
		}
	}
	names, err := s.redis.HMGet(ctx, s.namesKey(quizID), members...).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to read leaderboard names")
		names = nil
	}
	return buildEntries(results, names), nil
}

func (s *Service) rankKey(quizID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", s.prefix, quizID)
}

func (s *Service) namesKey(quizID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:names", s.prefix, quizID)
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// buildEntries pairs ranked members with their names. names is positional
// to results and may be shorter; members that are not UUIDs are skipped.
func buildEntries(results []redis.Z, names []interface{}) []Entry {
	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		userID, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		var name string
		if i < len(names) {
			name, _ = names[i].(string)
		}
		entries = append(entries, Entry{
			Rank:     len(entries) + 1,
			UserID:   userID,
			UserName: name,
			Score:    z.Score,
		})
	}
	return entries
}
