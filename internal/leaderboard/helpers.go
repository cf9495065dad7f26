package leaderboard

import (
	"github.com/google/uuid"

	ws "github.com/gokatarajesh/quiz-api/pkg/http/ws"
)

// Topic is the hub topic carrying updates for one quiz.
func Topic(quizID uuid.UUID) string {
	return "quiz:" + quizID.String()
}

func toWSEntries(entries []Entry) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = ws.LeaderboardEntry{
			Rank:     e.Rank,
			UserID:   e.UserID.String(),
			UserName: e.UserName,
			Score:    e.Score,
		}
	}
	return result
}

func toWSPayload(u Update) ws.LeaderboardPayload {
	p := ws.LeaderboardPayload{
		QuizID: u.QuizID.String(),
		Top:    toWSEntries(u.Top),
	}
	if u.UserID != uuid.Nil {
		score := u.Score
		p.UserID = u.UserID.String()
		p.Score = &score
	}
	return p
}
