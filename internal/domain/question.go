package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minQuestionTextLength = 5
	minQuestionOptions    = 2
)

var (
	ErrQuestionTextTooShort = errors.New("question text must be at least 5 characters")
	ErrTooFewOptions        = errors.New("question must have at least 2 options")
	ErrInvalidCorrectOption = errors.New("invalid correct option index")
	ErrQuestionWithoutQuiz  = errors.New("question must reference a quiz")
)

// Question is a multiple-choice question owned by a quiz.
//
// CorrectOption always satisfies 0 <= CorrectOption < len(Options) for values
// built by NewQuestion; the rest of the code relies on that.
type Question struct {
	ID            uuid.UUID `json:"id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correct_option"`
}

// NewQuestion validates the question invariants and returns a question bound to quizID.
// The ID is left empty; the store assigns it on insert.
func NewQuestion(quizID uuid.UUID, text string, options []string, correctOption int) (Question, error) {
	if quizID == uuid.Nil {
		return Question{}, ErrQuestionWithoutQuiz
	}
	if utf8.RuneCountInString(text) < minQuestionTextLength {
		return Question{}, ErrQuestionTextTooShort
	}
	if len(options) < minQuestionOptions {
		return Question{}, ErrTooFewOptions
	}
	if correctOption < 0 || correctOption >= len(options) {
		return Question{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidCorrectOption, correctOption, len(options))
	}

	opts := make([]string, len(options))
	copy(opts, options)

	return Question{
		QuizID:        quizID,
		Text:          text,
		Options:       opts,
		CorrectOption: correctOption,
	}, nil
}

// IsCorrect reports whether selected matches the correct option.
func (q Question) IsCorrect(selected int) bool {
	return selected == q.CorrectOption
}

// PublicQuestion hides the answer key from quiz takers.
type PublicQuestion struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Options []string  `json:"options"`
}

// Public strips the correct option.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: q.Options}
}
