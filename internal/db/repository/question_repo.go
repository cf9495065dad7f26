package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/quiz-api/internal/db/queries"
	"github.com/gokatarajesh/quiz-api/internal/domain"
)

type questionStore interface {
	InsertQuestion(ctx context.Context, arg queries.InsertQuestionParams) (queries.Question, error)
	ListQuestionsByQuiz(ctx context.Context, quizID pgtype.UUID) ([]queries.Question, error)
}

// QuestionRepository reads and appends questions outside the quiz-create
// transaction.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

func (r *QuestionRepository) Insert(ctx context.Context, q domain.Question) (domain.Question, error) {
	row, err := r.store.InsertQuestion(ctx, insertQuestionParams(q))
	if err != nil {
		return domain.Question{}, translate(err)
	}
	return toDomainQuestion(row), nil
}

// ListByQuiz returns questions in insertion order. An unknown quiz yields an
// empty slice, not an error.
func (r *QuestionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.Question, error) {
	rows, err := r.store.ListQuestionsByQuiz(ctx, pgUUID(quizID))
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainQuestion(row))
	}
	return out, nil
}

func insertQuestionParams(q domain.Question) queries.InsertQuestionParams {
	return queries.InsertQuestionParams{
		QuizID:        pgUUID(q.QuizID),
		Text:          q.Text,
		Options:       q.Options,
		CorrectOption: int32(q.CorrectOption),
	}
}

func toDomainQuestion(row queries.Question) domain.Question {
	return domain.Question{
		ID:            fromPGUUID(row.ID),
		QuizID:        fromPGUUID(row.QuizID),
		Text:          row.Text,
		Options:       row.Options,
		CorrectOption: int(row.CorrectOption),
	}
}
