package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/quiz-api/internal/db/queries"
	"github.com/gokatarajesh/quiz-api/internal/domain"
)

type attemptStore interface {
	InsertAttempt(ctx context.Context, arg queries.InsertAttemptParams) (queries.QuizAttempt, error)
	ListAttemptsByUser(ctx context.Context, userID pgtype.UUID) ([]queries.QuizAttempt, error)
}

// AttemptRepository stores graded submissions. Answers are kept as a JSONB
// document so the record stays readable after questions change.
type AttemptRepository struct {
	store attemptStore
}

func NewAttemptRepository(store attemptStore) *AttemptRepository {
	return &AttemptRepository{store: store}
}

func (r *AttemptRepository) Create(ctx context.Context, a domain.Attempt) (domain.Attempt, error) {
	answers := a.Answers
	if answers == nil {
		answers = []domain.AnswerResult{}
	}
	doc, err := json.Marshal(answers)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("encode answers: %w", err)
	}

	row, err := r.store.InsertAttempt(ctx, queries.InsertAttemptParams{
		UserID:      pgUUID(a.UserID),
		QuizID:      pgUUID(a.QuizID),
		Score:       a.Score,
		Answers:     doc,
		CompletedAt: pgtype.Timestamptz{Time: a.CompletedAt, Valid: true},
	})
	if err != nil {
		return domain.Attempt{}, translate(err)
	}
	return toDomainAttempt(row)
}

// ListByUser returns attempts newest first.
func (r *AttemptRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Attempt, error) {
	rows, err := r.store.ListAttemptsByUser(ctx, pgUUID(userID))
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		a, err := toDomainAttempt(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func toDomainAttempt(row queries.QuizAttempt) (domain.Attempt, error) {
	var answers []domain.AnswerResult
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &answers); err != nil {
			return domain.Attempt{}, fmt.Errorf("decode answers for attempt %s: %w", fromPGUUID(row.ID), err)
		}
	}
	if answers == nil {
		answers = []domain.AnswerResult{}
	}
	return domain.Attempt{
		ID:          fromPGUUID(row.ID),
		UserID:      fromPGUUID(row.UserID),
		QuizID:      fromPGUUID(row.QuizID),
		Score:       row.Score,
		Answers:     answers,
		CompletedAt: row.CompletedAt.Time,
	}, nil
}
