package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/config"
	"github.com/gokatarajesh/quiz-api/internal/history"
	"github.com/gokatarajesh/quiz-api/internal/leaderboard"
	"github.com/gokatarajesh/quiz-api/internal/metrics"
	"github.com/gokatarajesh/quiz-api/internal/quiz"
)

const readinessTimeout = 2 * time.Second

// ReadinessCheck is one upstream probed by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handlers groups the feature handlers mounted on the router. Leaderboard
// and Stream are always set; they answer 503 themselves when Redis is off.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	RequireAuth func(http.Handler) http.Handler
	Quizzes     *quiz.HTTPHandler
	History     *history.HTTPHandler
	Leaderboard *leaderboard.HTTPHandler
	Stream      *leaderboard.StreamHandler
}

// NewRouter builds the full middleware-wrapped handler tree.
func NewRouter(cfg *config.App, logger zerolog.Logger, m *metrics.Metrics, h Handlers, checks []ReadinessCheck) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "API Online"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /readyz", readyHandler(logger, checks))
	mux.Handle("GET /metrics", m.Handler())

	authed := h.RequireAuth

	mux.HandleFunc("/token", h.Auth.Login)
	mux.HandleFunc("/users/register", h.Auth.Register)
	mux.Handle("/users/me", authed(http.HandlerFunc(h.Auth.GetMe)))
	mux.Handle("/users/admin/me", authed(auth.RequireAdminUser(http.HandlerFunc(h.Auth.GetMe))))

	mux.Handle("/quizzes/with-questions", authed(http.HandlerFunc(h.Quizzes.CreateWithQuestions)))
	mux.Handle("/quizzes/{quiz_id}", authed(http.HandlerFunc(h.Quizzes.Get)))
	mux.Handle("/quizzes/{quiz_id}/leaderboard", authed(http.HandlerFunc(h.Leaderboard.HandleGet)))
	mux.Handle("/questions/batch", authed(http.HandlerFunc(h.Quizzes.CreateQuestionsBatch)))

	mux.Handle("/history/submit-quiz", authed(http.HandlerFunc(h.History.Submit)))
	mux.Handle("/history/me", authed(http.HandlerFunc(h.History.Me)))

	// authenticates from the query string itself
	mux.HandleFunc("/ws/quizzes/{quiz_id}/leaderboard", h.Stream.Handle)

	var handler http.Handler = mux
	handler = cors(cfg.CORS, handler)
	handler = instrument(m, handler)
	handler = recoverer(handler)
	handler = requestLogger(logger, handler)
	return handler
}

// NewHTTPServer wraps the router in an http.Server bound to cfg.HTTPAddr.
func NewHTTPServer(cfg *config.App, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func readyHandler(logger zerolog.Logger, checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		healthy := true
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Error().Err(err).Str("dependency", c.Name).Msg("dependency ping failed")
				status[c.Name] = "unavailable"
				healthy = false
				continue
			}
			status[c.Name] = "ok"
		}

		if !healthy {
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{"status": "degraded", "dependencies": status})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "dependencies": status})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
