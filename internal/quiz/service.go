package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/domain"
	"github.com/gokatarajesh/quiz-api/internal/metrics"
)

var (
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrNotQuizCreator = errors.New("only the quiz creator can add questions")
	ErrNoQuestions    = errors.New("at least one question is required")
)

// InvalidQuestionError reports which input question broke an invariant.
type InvalidQuestionError struct {
	Index int
	Err   error
}

func (e *InvalidQuestionError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index, e.Err)
}

func (e *InvalidQuestionError) Unwrap() error {
	return e.Err
}

type quizRepository interface {
	CreateWithQuestions(ctx context.Context, quiz domain.Quiz, questions []domain.Question) (domain.Quiz, []domain.Question, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Quiz, error)
}

type questionRepository interface {
	Insert(ctx context.Context, q domain.Question) (domain.Question, error)
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error)
}

// QuestionInput is one question as submitted by a client.
type QuestionInput struct {
	Text          string
	Options       []string
	CorrectOption int
}

// QuizInput describes a quiz to create together with its questions.
type QuizInput struct {
	Title       string
	Description *string
	Category    *string
	Questions   []QuestionInput
}

// QuizWithQuestions is a quiz and its questions in insertion order.
type QuizWithQuestions struct {
	Quiz      domain.Quiz
	Questions []domain.Question
}

// Service manages quizzes and their question sets.
type Service struct {
	quizzes   quizRepository
	questions questionRepository
	cache     QuestionCache
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	newID     func() uuid.UUID
}

type ServiceOptions struct {
	// Cache defaults to NopCache.
	Cache   QuestionCache
	Metrics *metrics.Metrics
}

func NewService(quizzes quizRepository, questions questionRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		quizzes:   quizzes,
		questions: questions,
		cache:     cache,
		metrics:   opts.Metrics,
		logger:    logger.With().Str("component", "quiz").Logger(),
		newID:     uuid.New,
	}
}

// CreateQuizWithQuestions validates every question, then stores the quiz and
// its questions atomically. Nothing is written when any question is invalid.
func (s *Service) CreateQuizWithQuestions(ctx context.Context, creatorID uuid.UUID, in QuizInput) (QuizWithQuestions, error) {
	if len(in.Questions) == 0 {
		return QuizWithQuestions{}, ErrNoQuestions
	}

	quizID := s.newID()
	questions, err := buildQuestions(quizID, in.Questions)
	if err != nil {
		return QuizWithQuestions{}, err
	}

	quiz, stored, err := s.quizzes.CreateWithQuestions(ctx, domain.Quiz{
		ID:          quizID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		CreatorID:   creatorID,
	}, questions)
	if err != nil {
		return QuizWithQuestions{}, fmt.Errorf("create quiz: %w", err)
	}

	s.metrics.QuizCreated()
	s.logger.Info().
		Str("quiz_id", quiz.ID.String()).
		Str("creator_id", creatorID.String()).
		Int("questions", len(stored)).
		Msg("quiz created")

	return QuizWithQuestions{Quiz: quiz, Questions: stored}, nil
}

// CreateQuestionsBatch appends questions to an existing quiz owned by userID.
// All inputs are validated first; inserts then run one by one, so a store
// failure part-way leaves the earlier questions in place.
func (s *Service) CreateQuestionsBatch(ctx context.Context, userID, quizID uuid.UUID, in []QuestionInput) ([]domain.Question, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != userID {
		return nil, ErrNotQuizCreator
	}
	if len(in) == 0 {
		return nil, ErrNoQuestions
	}

	questions, err := buildQuestions(quizID, in)
	if err != nil {
		return nil, err
	}

	created := make([]domain.Question, 0, len(questions))
	defer s.invalidate(ctx, quizID)
	for i, q := range questions {
		stored, err := s.questions.Insert(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("insert question %d: %w", i, err)
		}
		created = append(created, stored)
	}

	s.logger.Info().
		Str("quiz_id", quizID.String()).
		Int("questions", len(created)).
		Msg("questions appended")
	return created, nil
}

// GetQuiz returns the quiz and its questions.
func (s *Service) GetQuiz(ctx context.Context, quizID uuid.UUID) (QuizWithQuestions, error) {
	quiz, err := s.getQuiz(ctx, quizID)
	if err != nil {
		return QuizWithQuestions{}, err
	}
	questions, err := s.Questions(ctx, quizID)
	if err != nil {
		return QuizWithQuestions{}, err
	}
	return QuizWithQuestions{Quiz: quiz, Questions: questions}, nil
}

// Exists reports whether a quiz row exists, regardless of its questions.
func (s *Service) Exists(ctx context.Context, quizID uuid.UUID) (bool, error) {
	_, err := s.getQuiz(ctx, quizID)
	if errors.Is(err, ErrQuizNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Questions returns the question set of a quiz through the cache. An
// unknown quiz yields an empty set. Cache failures fall back to the store.
func (s *Service) Questions(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error) {
	gen, err := s.cache.Generation(ctx, quizID)
	if err != nil {
		s.metrics.CacheLookup(metrics.CacheError)
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("question cache generation read failed")
		return s.listQuestions(ctx, quizID)
	}

	cached, ok, err := s.cache.Get(ctx, quizID, gen)
	switch {
	case err != nil:
		s.metrics.CacheLookup(metrics.CacheError)
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("question cache read failed")
	case ok:
		s.metrics.CacheLookup(metrics.CacheHit)
		return cached, nil
	default:
		s.metrics.CacheLookup(metrics.CacheMiss)
	}

	questions, err := s.listQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if len(questions) > 0 {
		if err := s.cache.Set(ctx, quizID, gen, questions); err != nil {
			s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("question cache write failed")
		}
	}
	return questions, nil
}

func (s *Service) listQuestions(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error) {
	questions, err := s.questions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *Service) getQuiz(ctx context.Context, quizID uuid.UUID) (domain.Quiz, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Quiz{}, ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

func (s *Service) invalidate(ctx context.Context, quizID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("question cache invalidation failed")
	}
}

func buildQuestions(quizID uuid.UUID, in []QuestionInput) ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(in))
	for i, q := range in {
		built, err := domain.NewQuestion(quizID, q.Text, q.Options, q.CorrectOption)
		if err != nil {
			return nil, &InvalidQuestionError{Index: i, Err: err}
		}
		out = append(out, built)
	}
	return out, nil
}
