package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const attemptColumns = `id, user_id, quiz_id, score::float8, answers, completed_at`

const insertAttempt = `
INSERT INTO quiz_attempts (user_id, quiz_id, score, answers, completed_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + attemptColumns

type InsertAttemptParams struct {
	UserID      pgtype.UUID
	QuizID      pgtype.UUID
	Score       float64
	Answers     []byte
	CompletedAt pgtype.Timestamptz
}

func (q *Queries) InsertAttempt(ctx context.Context, arg InsertAttemptParams) (QuizAttempt, error) {
	row := q.db.QueryRow(ctx, insertAttempt, arg.UserID, arg.QuizID, arg.Score, arg.Answers, arg.CompletedAt)
	return scanAttempt(row)
}

const listAttemptsByUser = `
SELECT ` + attemptColumns + `
FROM quiz_attempts
WHERE user_id = $1
ORDER BY completed_at DESC`

func (q *Queries) ListAttemptsByUser(ctx context.Context, userID pgtype.UUID) ([]QuizAttempt, error) {
	rows, err := q.db.Query(ctx, listAttemptsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []QuizAttempt
	for rows.Next() {
		item, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanAttempt(row rowScanner) (QuizAttempt, error) {
	var a QuizAttempt
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.QuizID,
		&a.Score,
		&a.Answers,
		&a.CompletedAt,
	)
	return a, err
}
