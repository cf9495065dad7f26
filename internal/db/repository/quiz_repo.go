package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/quiz-api/internal/db/queries"
	"github.com/gokatarajesh/quiz-api/internal/domain"
)

type quizStore interface {
	GetQuiz(ctx context.Context, id pgtype.UUID) (queries.Quiz, error)
	DeleteOrphanQuizzes(ctx context.Context, createdBefore pgtype.Timestamptz) (int64, error)
}

// quizWriter is the subset of queries used inside the create transaction.
type quizWriter interface {
	CreateQuiz(ctx context.Context, arg queries.CreateQuizParams) (queries.Quiz, error)
	InsertQuestion(ctx context.Context, arg queries.InsertQuestionParams) (queries.Question, error)
}

type transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// QuizRepository persists quizzes. Creating a quiz together with its
// questions is atomic.
type QuizRepository struct {
	store    quizStore
	tx       transactor
	txWriter func(tx pgx.Tx) quizWriter
}

func NewQuizRepository(q *queries.Queries, tx transactor) *QuizRepository {
	return &QuizRepository{
		store: q,
		tx:    tx,
		txWriter: func(t pgx.Tx) quizWriter {
			return q.WithTx(t)
		},
	}
}

// CreateWithQuestions inserts quiz and every question in one transaction.
// Questions must already carry quiz.ID.
func (r *QuizRepository) CreateWithQuestions(ctx context.Context, quiz domain.Quiz, questions []domain.Question) (domain.Quiz, []domain.Question, error) {
	var (
		created domain.Quiz
		stored  = make([]domain.Question, 0, len(questions))
	)

	err := r.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		w := r.txWriter(tx)

		row, err := w.CreateQuiz(ctx, queries.CreateQuizParams{
			ID:          pgUUID(quiz.ID),
			Title:       quiz.Title,
			Description: pgText(quiz.Description),
			Category:    pgText(quiz.Category),
			CreatorID:   pgUUID(quiz.CreatorID),
		})
		if err != nil {
			return fmt.Errorf("insert quiz: %w", translate(err))
		}
		created = toDomainQuiz(row)

		for i, q := range questions {
			qrow, err := w.InsertQuestion(ctx, insertQuestionParams(q))
			if err != nil {
				return fmt.Errorf("insert question %d: %w", i, translate(err))
			}
			stored = append(stored, toDomainQuestion(qrow))
		}
		return nil
	})
	if err != nil {
		return domain.Quiz{}, nil, err
	}
	return created, stored, nil
}

func (r *QuizRepository) Get(ctx context.Context, id uuid.UUID) (domain.Quiz, error) {
	row, err := r.store.GetQuiz(ctx, pgUUID(id))
	if err != nil {
		return domain.Quiz{}, translate(err)
	}
	return toDomainQuiz(row), nil
}

// DeleteOrphans removes question-less quizzes created before cutoff.
func (r *QuizRepository) DeleteOrphans(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := r.store.DeleteOrphanQuizzes(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func toDomainQuiz(row queries.Quiz) domain.Quiz {
	return domain.Quiz{
		ID:          fromPGUUID(row.ID),
		Title:       row.Title,
		Description: textPtr(row.Description),
		Category:    textPtr(row.Category),
		CreatorID:   fromPGUUID(row.CreatorID),
		CreatedAt:   row.CreatedAt.Time,
	}
}
