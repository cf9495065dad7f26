package quiz

import (
	"encoding/json"
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
	"github.com/gokatarajesh/quiz-api/internal/db/repository"
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

const createBody = `{
	"title": "Math",
	"description": "Arithmetic",
	"questions": [
		{"text": "What is 5 * 6?", "options": ["30","25","36","35"], "correct_option": 0}
	]
}`

func TestHTTP_CreateWithQuestions(t *testing.T) {
	quizzes := new(mockQuizRepo)
	h := NewHTTPHandler(newTestService(quizzes, new(mockQuestionRepo), nil), zerolog.Nop())

	user := domain.User{ID: uuid.New()}
	quizzes.On("CreateWithQuestions", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Quiz{ID: uuid.New(), Title: "Math", CreatorID: user.ID},
			[]domain.Question{{ID: uuid.New(), Text: "What is 5 * 6?", Options: []string{"30", "25", "36", "35"}}}, nil)

	req := authed(httptest.NewRequest(http.MethodPost, "/quizzes/with-questions", strings.NewReader(createBody)), user)
	rec := httptest.NewRecorder()

	h.CreateWithQuestions(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body createQuizResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Math", body.Title)
	assert.Equal(t, 1, body.CreatedQuestions)
}

func TestHTTP_CreateWithQuestionsInvalidIndex(t *testing.T) {
	h := NewHTTPHandler(newTestService(new(mockQuizRepo), new(mockQuestionRepo), nil), zerolog.Nop())

	body := `{"title":"Math","questions":[{"text":"What is 5 * 6?","options":["30","25"],"correct_option":4}]}`
	req := authed(httptest.NewRequest(http.MethodPost, "/quizzes/with-questions", strings.NewReader(body)), domain.User{ID: uuid.New()})
	rec := httptest.NewRecorder()

	h.CreateWithQuestions(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := errorBody(t, rec)
	assert.Equal(t, httperrors.ErrCodeInvalidQuestion, resp.Error)
	assert.Equal(t, "questions[0]", resp.Field)
}

func TestHTTP_CreateWithQuestionsShapeErrors(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"short title":     {`{"title":"Ma","questions":[{"text":"Hello?","options":["a","b"],"correct_option":0}]}`, "title"},
		"no questions":    {`{"title":"Math","questions":[]}`, "questions"},
		"missing correct": {`{"title":"Math","questions":[{"text":"Hello?","options":["a","b"]}]}`, "questions[0].correct_option"},
		"long category":   {`{"title":"Math","category":"` + strings.Repeat("x", 51) + `","questions":[{"text":"Hello?","options":["a","b"],"correct_option":0}]}`, "category"},
		"missing options": {`{"title":"Math","questions":[{"text":"Hello?","correct_option":0}]}`, "questions[0].options"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewHTTPHandler(newTestService(new(mockQuizRepo), new(mockQuestionRepo), nil), zerolog.Nop())
			req := authed(httptest.NewRequest(http.MethodPost, "/quizzes/with-questions", strings.NewReader(tc.body)), domain.User{ID: uuid.New()})
			rec := httptest.NewRecorder()

			h.CreateWithQuestions(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, tc.field, errorBody(t, rec).Field)
		})
	}
}

func TestHTTP_CreateQuestionsBatchForbidden(t *testing.T) {
	quizzes := new(mockQuizRepo)
	h := NewHTTPHandler(newTestService(quizzes, new(mockQuestionRepo), nil), zerolog.Nop())

	quizID := uuid.New()
	quizzes.On("Get", mock.Anything, quizID).Return(domain.Quiz{ID: quizID, CreatorID: uuid.New()}, nil)

	body := `{"quiz_id":"` + quizID.String() + `","questions":[{"text":"Hello there?","options":["a","b"],"correct_option":1}]}`
	req := authed(httptest.NewRequest(http.MethodPost, "/questions/batch", strings.NewReader(body)), domain.User{ID: uuid.New()})
	rec := httptest.NewRecorder()

	h.CreateQuestionsBatch(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHTTP_CreateQuestionsBatchMissingQuiz(t *testing.T) {
	quizzes := new(mockQuizRepo)
	h := NewHTTPHandler(newTestService(quizzes, new(mockQuestionRepo), nil), zerolog.Nop())

	quizID := uuid.New()
	quizzes.On("Get", mock.Anything, quizID).Return(domain.Quiz{}, repository.ErrNotFound)

	body := `{"quiz_id":"` + quizID.String() + `","questions":[{"text":"Hello there?","options":["a","b"],"correct_option":1}]}`
	req := authed(httptest.NewRequest(http.MethodPost, "/questions/batch", strings.NewReader(body)), domain.User{ID: uuid.New()})
	rec := httptest.NewRecorder()

	h.CreateQuestionsBatch(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httperrors.ErrCodeQuizNotFound, errorBody(t, rec).Error)
}

func TestHTTP_CreateQuestionsBatchCreated(t *testing.T) {
	quizzes := new(mockQuizRepo)
	questions := new(mockQuestionRepo)
	h := NewHTTPHandler(newTestService(quizzes, questions, nil), zerolog.Nop())

	owner := domain.User{ID: uuid.New()}
	quizID := uuid.New()
	quizzes.On("Get", mock.Anything, quizID).Return(domain.Quiz{ID: quizID, CreatorID: owner.ID}, nil)
	questions.On("Insert", mock.Anything, mock.Anything).Return(domain.Question{ID: uuid.New(), QuizID: quizID, Text: "Hello there?"}, nil)

	body := `{"quiz_id":"` + quizID.String() + `","questions":[{"text":"Hello there?","options":["a","b"],"correct_option":1}]}`
	req := authed(httptest.NewRequest(http.MethodPost, "/questions/batch", strings.NewReader(body)), owner)
	rec := httptest.NewRecorder()

	h.CreateQuestionsBatch(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var created []domain.Question
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Len(t, created, 1)
}

func TestHTTP_CreateQuestionsBatchBadQuizID(t *testing.T) {
	h := NewHTTPHandler(newTestService(new(mockQuizRepo), new(mockQuestionRepo), nil), zerolog.Nop())

	body := `{"quiz_id":"nope","questions":[{"text":"Hello there?","options":["a","b"],"correct_option":1}]}`
	req := authed(httptest.NewRequest(http.MethodPost, "/questions/batch", strings.NewReader(body)), domain.User{ID: uuid.New()})
	rec := httptest.NewRecorder()

	h.CreateQuestionsBatch(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "quiz_id", errorBody(t, rec).Field)
}

func TestHTTP_GetHidesCorrectOption(t *testing.T) {
	quizzes := new(mockQuizRepo)
	questions := new(mockQuestionRepo)
	h := NewHTTPHandler(newTestService(quizzes, questions, nil), zerolog.Nop())

	quizID := uuid.New()
	quizzes.On("Get", mock.Anything, quizID).Return(domain.Quiz{ID: quizID, Title: "Math"}, nil)
	questions.On("ListByQuiz", mock.Anything, quizID).Return([]domain.Question{
		{ID: uuid.New(), QuizID: quizID, Text: "What is 5 * 6?", Options: []string{"30", "25"}, CorrectOption: 0},
	}, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("/quizzes/{quiz_id}", h.Get)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes/"+quizID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct_option")
	assert.Contains(t, rec.Body.String(), "What is 5 * 6?")
}

func TestHTTP_GetUnknownQuiz(t *testing.T) {
	quizzes := new(mockQuizRepo)
	h := NewHTTPHandler(newTestService(quizzes, new(mockQuestionRepo), nil), zerolog.Nop())

	quizID := uuid.New()
	quizzes.On("Get", mock.Anything, quizID).Return(domain.Quiz{}, repository.ErrNotFound)

	mux := http.NewServeMux()
	mux.HandleFunc("/quizzes/{quiz_id}", h.Get)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes/"+quizID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/quizzes/not-a-uuid", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
