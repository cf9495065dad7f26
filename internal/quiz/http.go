package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/domain"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/request"
)

// HTTPHandler exposes quiz and question endpoints. Every route expects
// auth.RequireAuth in front of it.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Shape checks only; content rules live in domain.NewQuestion.
type questionRequest struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required"`
	CorrectOption *int     `json:"correct_option" validate:"required"`
}

type createQuizRequest struct {
	Title       string            `json:"title" validate:"required,min=3,max=100"`
	Description *string           `json:"description" validate:"omitempty,max=500"`
	Category    *string           `json:"category" validate:"omitempty,max=50"`
	Questions   []questionRequest `json:"questions" validate:"required,min=1,dive"`
}

type batchRequest struct {
	QuizID    string            `json:"quiz_id" validate:"required,uuid"`
	Questions []questionRequest `json:"questions" validate:"required,min=1,dive"`
}

type createQuizResponse struct {
	QuizID           uuid.UUID         `json:"quiz_id"`
	Title            string            `json:"title"`
	CreatedQuestions int               `json:"created_questions"`
	Questions        []domain.Question `json:"questions"`
}

type quizResponse struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Description *string                 `json:"description,omitempty"`
	Category    *string                 `json:"category,omitempty"`
	CreatorID   uuid.UUID               `json:"creator_id"`
	CreatedAt   time.Time               `json:"created_at"`
	Questions   []domain.PublicQuestion `json:"questions"`
}

// CreateWithQuestions handles POST /quizzes/with-questions
func (h *HTTPHandler) CreateWithQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w, http.MethodPost)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
		return
	}

	var req createQuizRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		httperrors.RespondDecodeError(w, err)
		return
	}

	created, err := h.svc.CreateQuizWithQuestions(r.Context(), user.ID, QuizInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Questions:   toQuestionInputs(req.Questions),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createQuizResponse{
		QuizID:           created.Quiz.ID,
		Title:            created.Quiz.Title,
		CreatedQuestions: len(created.Questions),
		Questions:        created.Questions,
	})
}

// CreateQuestionsBatch handles POST /questions/batch
func (h *HTTPHandler) CreateQuestionsBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w, http.MethodPost)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
		return
	}

	var req batchRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		httperrors.RespondDecodeError(w, err)
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		httperrors.RespondValidationError(w, "quiz_id must be a valid UUID", "quiz_id")
		return
	}

	created, err := h.svc.CreateQuestionsBatch(r.Context(), user.ID, quizID, toQuestionInputs(req.Questions))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// Get handles GET /quizzes/{quiz_id}. Correct options are not included.
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w, http.MethodGet)
		return
	}

	quizID, err := uuid.Parse(r.PathValue("quiz_id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
		return
	}

	found, err := h.svc.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	public := make([]domain.PublicQuestion, 0, len(found.Questions))
	for _, q := range found.Questions {
		public = append(public, q.Public())
	}
	respondJSON(w, http.StatusOK, quizResponse{
		ID:          found.Quiz.ID,
		Title:       found.Quiz.Title,
		Description: found.Quiz.Description,
		Category:    found.Quiz.Category,
		CreatorID:   found.Quiz.CreatorID,
		CreatedAt:   found.Quiz.CreatedAt,
		Questions:   public,
	})
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, err error) {
	var invalid *InvalidQuestionError
	switch {
	case errors.As(err, &invalid):
		httperrors.RespondErrorField(w, http.StatusBadRequest, httperrors.ErrCodeInvalidQuestion,
			invalid.Err.Error(), fmt.Sprintf("questions[%d]", invalid.Index))
	case errors.Is(err, ErrNoQuestions):
		httperrors.RespondValidationError(w, err.Error(), "questions")
	case errors.Is(err, ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	case errors.Is(err, ErrNotQuizCreator):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "Only the quiz creator can add questions")
	default:
		h.logger.Error().Err(err).Msg("quiz request failed")
		httperrors.RespondInternalError(w)
	}
}

func toQuestionInputs(in []questionRequest) []QuestionInput {
	out := make([]QuestionInput, 0, len(in))
	for _, q := range in {
		out = append(out, QuestionInput{
			Text:          q.Text,
			Options:       q.Options,
			CorrectOption: *q.CorrectOption,
		})
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
