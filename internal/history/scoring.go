package history

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gokatarajesh/quiz-api/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Response is one answer in a submission.
type Response struct {
	QuestionID     uuid.UUID
	SelectedOption int
}

// Grade is the outcome of scoring a submission.
type Grade struct {
	Score   float64
	Matched int
	Correct int
	Details []domain.AnswerResult
}

// GradeResponses scores responses against the quiz's questions. Responses for
// questions outside the set are skipped and do not count towards Matched.
// Duplicate responses for the same question are each counted.
func GradeResponses(questions []domain.Question, responses []Response) Grade {
	byID := make(map[uuid.UUID]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	g := Grade{Details: make([]domain.AnswerResult, 0, len(responses))}
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		correct := q.IsCorrect(r.SelectedOption)
		if correct {
			g.Correct++
		}
		g.Details = append(g.Details, domain.AnswerResult{
			QuestionID:     q.ID,
			SelectedOption: r.SelectedOption,
			IsCorrect:      correct,
			QuestionText:   q.Text,
			CorrectOption:  q.CorrectOption,
		})
	}
	g.Matched = len(g.Details)
	g.Score = Percent(g.Correct, g.Matched)
	return g
}

// Percent returns correct/total as a percentage rounded half to even at two
// decimals, or 0 when total is 0.
func Percent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(correct)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		RoundBank(2)
	f, _ := pct.Float64()
	return f
}

// AverageScore is the arithmetic mean rounded half to even at two decimals,
// 0 for none.
func AverageScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, s := range scores {
		sum = sum.Add(decimal.NewFromFloat(s))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(scores)))).RoundBank(2)
	f, _ := avg.Float64()
	return f
}
