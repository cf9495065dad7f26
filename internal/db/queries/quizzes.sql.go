package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const quizColumns = `id, title, description, category, creator_id, created_at`

const createQuiz = `
INSERT INTO quizzes (id, title, description, category, creator_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + quizColumns

type CreateQuizParams struct {
	ID          pgtype.UUID
	Title       string
	Description pgtype.Text
	Category    pgtype.Text
	CreatorID   pgtype.UUID
}

func (q *Queries) CreateQuiz(ctx context.Context, arg CreateQuizParams) (Quiz, error) {
	row := q.db.QueryRow(ctx, createQuiz, arg.ID, arg.Title, arg.Description, arg.Category, arg.CreatorID)
	return scanQuiz(row)
}

const getQuiz = `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`

func (q *Queries) GetQuiz(ctx context.Context, id pgtype.UUID) (Quiz, error) {
	return scanQuiz(q.db.QueryRow(ctx, getQuiz, id))
}

// Quizzes without a single question that are older than the cutoff.
const deleteOrphanQuizzes = `
DELETE FROM quizzes qz
WHERE qz.created_at < $1
  AND NOT EXISTS (SELECT 1 FROM questions q WHERE q.quiz_id = qz.id)
  AND NOT EXISTS (SELECT 1 FROM quiz_attempts a WHERE a.quiz_id = qz.id)`

func (q *Queries) DeleteOrphanQuizzes(ctx context.Context, createdBefore pgtype.Timestamptz) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrphanQuizzes, createdBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var qz Quiz
	err := row.Scan(
		&qz.ID,
		&qz.Title,
		&qz.Description,
		&qz.Category,
		&qz.CreatorID,
		&qz.CreatedAt,
	)
	return qz, err
}
