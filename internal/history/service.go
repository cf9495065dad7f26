package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/domain"
	"github.com/gokatarajesh/quiz-api/internal/metrics"
)

var (
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizHasNoQuestions = errors.New("quiz has no questions")
	ErrUserNotFound       = errors.New("user not found")
)

type questionSource interface {
	Questions(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error)
	Exists(ctx context.Context, quizID uuid.UUID) (bool, error)
}

type attemptRepository interface {
	Create(ctx context.Context, a domain.Attempt) (domain.Attempt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Attempt, error)
}

type userRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

type scoreRecorder interface {
	Record(ctx context.Context, quizID, userID uuid.UUID, userName string, score float64) error
}

// Submission is a user's answers to one quiz.
type Submission struct {
	QuizID    uuid.UUID
	Responses []Response
}

// Result is what a submitter gets back.
type Result struct {
	AttemptID      uuid.UUID             `json:"attempt_id"`
	Score          float64               `json:"score"`
	TotalQuestions int                   `json:"total_questions"`
	CorrectAnswers int                   `json:"correct_answers"`
	Details        []domain.AnswerResult `json:"details"`
}

// History summarises every attempt of one user.
type History struct {
	UserID            uuid.UUID        `json:"user_id"`
	UserName          string           `json:"user_name"`
	UserEmail         string           `json:"user_email"`
	Attempts          []domain.Attempt `json:"attempts"`
	TotalQuizzesTaken int              `json:"total_quizzes_taken"`
	AverageScore      float64          `json:"average_score"`
}

type Service struct {
	questions   questionSource
	attempts    attemptRepository
	users       userRepository
	leaderboard scoreRecorder
	metrics     *metrics.Metrics
	logger      zerolog.Logger
	now         func() time.Time
}

type ServiceOptions struct {
	// Leaderboard is optional; nil skips ranking updates.
	Leaderboard scoreRecorder
	Metrics     *metrics.Metrics
}

func NewService(questions questionSource, attempts attemptRepository, users userRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		questions:   questions,
		attempts:    attempts,
		users:       users,
		leaderboard: opts.Leaderboard,
		metrics:     opts.Metrics,
		logger:      logger.With().Str("component", "history").Logger(),
		now:         time.Now,
	}
}

// SubmitQuiz grades the submission against the quiz's current questions and
// stores the attempt. A leaderboard failure does not fail the submission.
func (s *Service) SubmitQuiz(ctx context.Context, user domain.User, sub Submission) (Result, error) {
	questions, err := s.questions.Questions(ctx, sub.QuizID)
	if err != nil {
		return Result{}, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		exists, err := s.questions.Exists(ctx, sub.QuizID)
		if err != nil {
			return Result{}, fmt.Errorf("check quiz: %w", err)
		}
		if !exists {
			return Result{}, ErrQuizNotFound
		}
		return Result{}, ErrQuizHasNoQuestions
	}

	grade := GradeResponses(questions, sub.Responses)

	attempt, err := s.attempts.Create(ctx, domain.Attempt{
		UserID:      user.ID,
		QuizID:      sub.QuizID,
		Score:       grade.Score,
		Answers:     grade.Details,
		CompletedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// quiz or user vanished between read and write
			return Result{}, ErrQuizNotFound
		}
		return Result{}, fmt.Errorf("store attempt: %w", err)
	}

	s.metrics.ObserveSubmission(grade.Score)
	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("quiz_id", sub.QuizID.String()).
		Float64("score", grade.Score).
		Int("matched", grade.Matched).
		Msg("quiz submitted")

	if s.leaderboard != nil {
		err := s.leaderboard.Record(ctx, sub.QuizID, user.ID, user.Name, grade.Score)
		s.metrics.LeaderboardUpdate(err == nil)
		if err != nil {
			s.logger.Warn().Err(err).Str("quiz_id", sub.QuizID.String()).Msg("leaderboard update failed")
		}
	}

	return Result{
		AttemptID:      attempt.ID,
		Score:          grade.Score,
		TotalQuestions: grade.Matched,
		CorrectAnswers: grade.Correct,
		Details:        grade.Details,
	}, nil
}

// GetHistory lists the user's attempts, newest first, with summary figures.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID) (History, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return History{}, ErrUserNotFound
		}
		return History{}, fmt.Errorf("get user: %w", err)
	}

	attempts, err := s.attempts.ListByUser(ctx, userID)
	if err != nil {
		return History{}, fmt.Errorf("list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}

	scores := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		scores = append(scores, a.Score)
	}

	return History{
		UserID:            user.ID,
		UserName:          user.Name,
		UserEmail:         user.Email,
		Attempts:          attempts,
		TotalQuizzesTaken: len(attempts),
		AverageScore:      AverageScore(scores),
	}, nil
}
