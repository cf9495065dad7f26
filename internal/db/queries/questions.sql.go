package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const questionColumns = `id, quiz_id, text, options, correct_option, created_at`

const insertQuestion = `
INSERT INTO questions (quiz_id, text, options, correct_option)
VALUES ($1, $2, $3, $4)
RETURNING ` + questionColumns

type InsertQuestionParams struct {
	QuizID        pgtype.UUID
	Text          string
	Options       []string
	CorrectOption int32
}

func (q *Queries) InsertQuestion(ctx context.Context, arg InsertQuestionParams) (Question, error) {
	row := q.db.QueryRow(ctx, insertQuestion, arg.QuizID, arg.Text, arg.Options, arg.CorrectOption)
	return scanQuestion(row)
}

const listQuestionsByQuiz = `
SELECT ` + questionColumns + `
FROM questions
WHERE quiz_id = $1
ORDER BY created_at, id`

func (q *Queries) ListQuestionsByQuiz(ctx context.Context, quizID pgtype.UUID) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByQuiz, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Question
	for rows.Next() {
		item, err := scanQuestion(rows)
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

func scanQuestion(row rowScanner) (Question, error) {
	var qs Question
	err := row.Scan(
		&qs.ID,
		&qs.QuizID,
		&qs.Text,
		&qs.Options,
		&qs.CorrectOption,
		&qs.CreatedAt,
	)
	return qs, err
}
