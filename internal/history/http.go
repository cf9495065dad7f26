package history

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/request"
)

type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "history_http").Logger(),
	}
}

type answerRequest struct {
	QuestionID     string `json:"question_id" validate:"required,uuid"`
	SelectedOption *int   `json:"selected_option" validate:"required"`
}

type submitRequest struct {
	QuizID    string          `json:"quiz_id" validate:"required,uuid"`
	Responses []answerRequest `json:"responses" validate:"required,dive"`
}

// Submit handles POST /history/submit-quiz
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w, http.MethodPost)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
		return
	}

	var req submitRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		httperrors.RespondDecodeError(w, err)
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		httperrors.RespondErrorField(w, http.StatusUnprocessableEntity, httperrors.ErrCodeInvalidQuizID,
			"quiz_id must be a valid UUID", "quiz_id")
		return
	}

	responses := make([]Response, 0, len(req.Responses))
	for _, a := range req.Responses {
		// validated above
		qid, _ := uuid.Parse(a.QuestionID)
		responses = append(responses, Response{QuestionID: qid, SelectedOption: *a.SelectedOption})
	}

	result, err := h.svc.SubmitQuiz(r.Context(), user, Submission{QuizID: quizID, Responses: responses})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Me handles GET /history/me
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w, http.MethodGet)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
		return
	}

	hist, err := h.svc.GetHistory(r.Context(), user.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, hist)
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrQuizNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
	case errors.Is(err, ErrQuizHasNoQuestions):
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz has no questions")
	case errors.Is(err, ErrUserNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "User not found")
	default:
		h.logger.Error().Err(err).Msg("history request failed")
		httperrors.RespondInternalError(w)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
