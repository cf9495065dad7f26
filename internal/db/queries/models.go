package queries

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             pgtype.UUID
	Email          string
	Name           string
	HashedPassword string
	IsAdmin        bool
	CreatedAt      pgtype.Timestamptz
	LastLogin      pgtype.Timestamptz
}

type Quiz struct {
	ID          pgtype.UUID
	Title       string
	Description pgtype.Text
	Category    pgtype.Text
	CreatorID   pgtype.UUID
	CreatedAt   pgtype.Timestamptz
}

type Question struct {
	ID            pgtype.UUID
	QuizID        pgtype.UUID
	Text          string
	Options       []string
	CorrectOption int32
	CreatedAt     pgtype.Timestamptz
}

// QuizAttempt.Answers is the raw JSONB document.
type QuizAttempt struct {
	ID          pgtype.UUID
	UserID      pgtype.UUID
	QuizID      pgtype.UUID
	Score       float64
	Answers     []byte
	CompletedAt pgtype.Timestamptz
}
