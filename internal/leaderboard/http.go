package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

type ranking interface {
	Top(ctx context.Context, quizID uuid.UUID, limit int) ([]Entry, error)
}

type quizChecker interface {
	Exists(ctx context.Context, quizID uuid.UUID) (bool, error)
}

// HTTPHandler exposes the REST leaderboard query. A nil ranking means Redis
// is not configured and every request gets 503.
type HTTPHandler struct {
	ranks   ranking
	quizzes quizChecker
	logger  zerolog.Logger
}

// NewHTTPHandler constructs a leaderboard HTTP handler.
func NewHTTPHandler(ranks ranking, quizzes quizChecker, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		ranks:   ranks,
		quizzes: quizzes,
		logger:  logger.With().Str("component", "leaderboard_http").Logger(),
	}
}

type topResponse struct {
	QuizID      uuid.UUID `json:"quiz_id"`
	Top         []Entry   `json:"top"`
	RetrievedAt string    `json:"retrieved_at"`
}

// HandleGet responds with the current leaderboard of a quiz.
// Route: GET /quizzes/{quiz_id}/leaderboard?limit=10
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w, http.MethodGet)
		return
	}
	if h.ranks == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeFeatureNotAvailable, "Leaderboard is not enabled")
		return
	}

	quizID, ok := h.resolveQuiz(w, r)
	if !ok {
		return
	}

	top, err := h.ranks.Top(r.Context(), quizID, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("redis leaderboard fetch failed")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeLeaderboardFetchFailed, "Failed to fetch leaderboard")
		return
	}

	writeJSON(w, topResponse{
		QuizID:      quizID,
		Top:         top,
		RetrievedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// resolveQuiz writes a 404 and reports false when the path does not name an
// existing quiz.
func (h *HTTPHandler) resolveQuiz(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	quizID, err := uuid.Parse(r.PathValue("quiz_id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
		return uuid.Nil, false
	}
	exists, err := h.quizzes.Exists(r.Context(), quizID)
	if err != nil {
		h.logger.Error().Err(err).Str("quiz_id", quizID.String()).Msg("quiz lookup failed")
		httperrors.RespondInternalError(w)
		return uuid.Nil, false
	}
	if !exists {
		httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
		return uuid.Nil, false
	}
	return quizID, true
}

// parseLimit returns 0 (the service default) for anything that is not a
// positive integer.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
