//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func TestLeaderboardStream(t *testing.T) {
	user := registerUser(t, uniqueEmail("ws"), "Stream Watcher", "testpassword123")
	quiz := createArithmeticQuiz(t, user.AccessToken)

	if status := doJSON(t, http.MethodGet, "/quizzes/"+quiz.QuizID+"/leaderboard", user.AccessToken, nil, nil); status == http.StatusServiceUnavailable {
		t.Skip("leaderboard disabled (REDIS_ADDR not set)")
	}

	wsURL := "ws" + strings.TrimPrefix(baseURL(), "http") + "/ws/quizzes/" + quiz.QuizID + "/leaderboard?token=" + user.AccessToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if msg.Type != "leaderboard_snapshot" {
		t.Fatalf("expected snapshot first, got %s", msg.Type)
	}

	status := doJSON(t, http.MethodPost, "/history/submit-quiz", user.AccessToken, map[string]interface{}{
		"quiz_id": quiz.QuizID,
		"responses": []map[string]interface{}{
			{"question_id": quiz.Questions[0].ID, "selected_option": quiz.Questions[0].CorrectOption},
		},
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("unexpected submit status: %d", status)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if msg.Type != "leaderboard_update" {
		t.Fatalf("expected leaderboard_update, got %s", msg.Type)
	}

	var payload struct {
		QuizID string `json:"quiz_id"`
		Top    []struct {
			UserID   string  `json:"user_id"`
			UserName string  `json:"user_name"`
			Score    float64 `json:"score"`
		} `json:"top"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("decode update payload: %v", err)
	}
	if payload.QuizID != quiz.QuizID || len(payload.Top) == 0 || payload.Top[0].UserID != user.ID {
		t.Fatalf("unexpected leaderboard update: %+v", payload)
	}
}

func TestLeaderboardStreamRejectsMissingToken(t *testing.T) {
	wsURL := "ws" + strings.TrimPrefix(baseURL(), "http") + "/ws/quizzes/00000000-0000-4000-8000-000000000000/leaderboard"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected handshake to fail without token")
	}
	if resp == nil {
		t.Fatalf("no handshake response: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected handshake status: %d", resp.StatusCode)
	}
}
