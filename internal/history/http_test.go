package history

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/domain"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

func authed(r *http.Request, user domain.User) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), user))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) httperrors.ErrorResponse {
	t.Helper()
	var body httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHTTP_Submit(t *testing.T) {
	questions := sampleQuestions(t, 2)
	quizID := questions[0].QuizID

	qs := new(mockQuestions)
	qs.On("Questions", mock.Anything, quizID).Return(questions, nil)
	attempts := new(mockAttempts)
	attempts.On("Create", mock.Anything, mock.Anything).Return(domain.Attempt{ID: uuid.New()}, nil)
	h := NewHTTPHandler(newTestService(qs, attempts, new(mockUsers), nil), zerolog.Nop())

	body := fmt.Sprintf(`{"quiz_id":%q,"responses":[
		{"question_id":%q,"selected_option":%d},
		{"question_id":%q,"selected_option":%d}
	]}`, quizID, questions[0].ID, questions[0].CorrectOption, questions[1].ID, questions[1].CorrectOption+1)
	req := authed(httptest.NewRequest(http.MethodPost, "/history/submit-quiz", strings.NewReader(body)), testUser())
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 1, res.CorrectAnswers)
	require.Len(t, res.Details, 2)
	assert.True(t, res.Details[0].IsCorrect)
}

func TestHTTP_SubmitUnknownQuiz(t *testing.T) {
	quizID := uuid.New()
	qs := new(mockQuestions)
	qs.On("Questions", mock.Anything, quizID).Return([]domain.Question{}, nil)
	qs.On("Exists", mock.Anything, quizID).Return(false, nil)
	h := NewHTTPHandler(newTestService(qs, new(mockAttempts), new(mockUsers), nil), zerolog.Nop())

	body := fmt.Sprintf(`{"quiz_id":%q,"responses":[]}`, quizID)
	req := authed(httptest.NewRequest(http.MethodPost, "/history/submit-quiz", strings.NewReader(body)), testUser())
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := errorBody(t, rec)
	assert.Equal(t, httperrors.ErrCodeQuizNotFound, resp.Error)
	assert.Equal(t, "Quiz not found", resp.Detail)
}

func TestHTTP_SubmitEmptyQuiz(t *testing.T) {
	quizID := uuid.New()
	qs := new(mockQuestions)
	qs.On("Questions", mock.Anything, quizID).Return([]domain.Question{}, nil)
	qs.On("Exists", mock.Anything, quizID).Return(true, nil)
	h := NewHTTPHandler(newTestService(qs, new(mockAttempts), new(mockUsers), nil), zerolog.Nop())

	body := fmt.Sprintf(`{"quiz_id":%q,"responses":[]}`, quizID)
	req := authed(httptest.NewRequest(http.MethodPost, "/history/submit-quiz", strings.NewReader(body)), testUser())
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Quiz has no questions", errorBody(t, rec).Detail)
}

func TestHTTP_SubmitValidation(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"missing quiz id":   {`{"responses":[]}`, "quiz_id"},
		"malformed quiz id": {`{"quiz_id":"nope","responses":[]}`, "quiz_id"},
		"missing responses": {fmt.Sprintf(`{"quiz_id":%q}`, uuid.New()), "responses"},
		"missing selection": {fmt.Sprintf(`{"quiz_id":%q,"responses":[{"question_id":%q}]}`, uuid.New(), uuid.New()), "responses[0].selected_option"},
		"bad question id":   {fmt.Sprintf(`{"quiz_id":%q,"responses":[{"question_id":"x","selected_option":1}]}`, uuid.New()), "responses[0].question_id"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewHTTPHandler(newTestService(new(mockQuestions), new(mockAttempts), new(mockUsers), nil), zerolog.Nop())
			req := authed(httptest.NewRequest(http.MethodPost, "/history/submit-quiz", strings.NewReader(tc.body)), testUser())
			rec := httptest.NewRecorder()

			h.Submit(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tc.field, errorBody(t, rec).Field)
		})
	}
}

func TestHTTP_SubmitRequiresUser(t *testing.T) {
	h := NewHTTPHandler(newTestService(new(mockQuestions), new(mockAttempts), new(mockUsers), nil), zerolog.Nop())
	rec := httptest.NewRecorder()

	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/history/submit-quiz", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHTTP_SubmitMethodNotAllowed(t *testing.T) {
	h := NewHTTPHandler(newTestService(new(mockQuestions), new(mockAttempts), new(mockUsers), nil), zerolog.Nop())
	rec := httptest.NewRecorder()

	h.Submit(rec, httptest.NewRequest(http.MethodGet, "/history/submit-quiz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHTTP_Me(t *testing.T) {
	user := testUser()
	users := new(mockUsers)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	attempts := new(mockAttempts)
	attempts.On("ListByUser", mock.Anything, user.ID).Return([]domain.Attempt{
		{ID: uuid.New(), UserID: user.ID, Score: 100, Answers: []domain.AnswerResult{}},
		{ID: uuid.New(), UserID: user.ID, Score: 0, Answers: []domain.AnswerResult{}},
	}, nil)
	h := NewHTTPHandler(newTestService(new(mockQuestions), attempts, users, nil), zerolog.Nop())

	req := authed(httptest.NewRequest(http.MethodGet, "/history/me", nil), user)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, user.ID.String(), body["user_id"])
	assert.Equal(t, "Ana", body["user_name"])
	assert.Equal(t, "ana@example.com", body["user_email"])
	assert.EqualValues(t, 2, body["total_quizzes_taken"])
	assert.EqualValues(t, 50, body["average_score"])
	assert.Len(t, body["attempts"], 2)
}
