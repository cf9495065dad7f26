package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
}

// Quiz holds quiz metadata. Questions are stored separately.
type Quiz struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	CreatorID   uuid.UUID `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// AnswerResult is the graded outcome for one question of a submission.
// QuestionText and CorrectOption are copies taken at submission time.
type AnswerResult struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption int       `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	QuestionText   string    `json:"question_text"`
	CorrectOption  int       `json:"correct_option"`
}

// Attempt is an immutable graded submission.
type Attempt struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	QuizID      uuid.UUID      `json:"quiz_id"`
	Score       float64        `json:"score"`
	Answers     []AnswerResult `json:"answers"`
	CompletedAt time.Time      `json:"completed_at"`
}
