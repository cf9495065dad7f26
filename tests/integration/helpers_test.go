//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"
)

type registeredUser struct {
	ID          string
	Email       string
	Name        string
	AccessToken string
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// doJSON sends payload as JSON (nil for no body) and decodes the response
// into out when out is non-nil. It returns the status code.
func doJSON(t *testing.T, method, path, token string, payload, out interface{}) int {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL()+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func registerUser(t *testing.T, email, name, password string) registeredUser {
	t.Helper()

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	status := doJSON(t, http.MethodPost, "/users/register", "", map[string]interface{}{
		"email":    email,
		"name":     name,
		"password": password,
	}, &user)
	if status != http.StatusCreated {
		t.Fatalf("unexpected register status: %d", status)
	}

	return registeredUser{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		AccessToken: loginForm(t, email, password),
	}
}

// loginForm exchanges credentials for a token the OAuth2 password-flow way.
func loginForm(t *testing.T, email, password string) string {
	t.Helper()

	form := url.Values{"username": {email}, "password": {password}}
	resp, err := http.Post(baseURL()+"/token", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("token request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected token status: %d", resp.StatusCode)
	}
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if out.AccessToken == "" || out.TokenType != "bearer" {
		t.Fatalf("unexpected token response: %+v", out)
	}
	return out.AccessToken
}

type createdQuiz struct {
	QuizID           string `json:"quiz_id"`
	Title            string `json:"title"`
	CreatedQuestions int    `json:"created_questions"`
	Questions        []struct {
		ID            string   `json:"id"`
		Text          string   `json:"text"`
		Options       []string `json:"options"`
		CorrectOption int      `json:"correct_option"`
	} `json:"questions"`
}

func createArithmeticQuiz(t *testing.T, token string) createdQuiz {
	t.Helper()

	var out createdQuiz
	status := doJSON(t, http.MethodPost, "/quizzes/with-questions", token, map[string]interface{}{
		"title":       "Arithmetic",
		"description": "Warm-up",
		"category":    "math",
		"questions": []map[string]interface{}{
			{"text": "What is 5 * 6?", "options": []string{"30", "25", "36", "35"}, "correct_option": 0},
			{"text": "What is 2 + 2?", "options": []string{"3", "4"}, "correct_option": 1},
			{"text": "What is 9 - 3?", "options": []string{"6", "5", "7"}, "correct_option": 0},
		},
	}, &out)
	if status != http.StatusCreated {
		t.Fatalf("unexpected create quiz status: %d", status)
	}
	return out
}
