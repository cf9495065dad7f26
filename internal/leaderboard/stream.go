package leaderboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/domain"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	ws "github.com/gokatarajesh/quiz-api/pkg/http/ws"
)

type tokenAuthenticator interface {
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

type topicHub interface {
	Subscribe(topic string, conn *ws.Connection)
	Unsubscribe(topic string, conn *ws.Connection)
}

// StreamHandler upgrades authenticated clients to a WebSocket that receives
// leaderboard_update messages for one quiz. Browsers cannot set headers on
// the handshake, so the token may also come from the token query parameter.
type StreamHandler struct {
	http     *HTTPHandler
	hub      topicHub
	auth     tokenAuthenticator
	topN     int
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewStreamHandler builds the WebSocket endpoint. allowedOrigins follows the
// CORS setting; "*" accepts any origin.
func NewStreamHandler(ranks ranking, quizzes quizChecker, hub topicHub, authn tokenAuthenticator, topN int, allowedOrigins []string, logger zerolog.Logger) *StreamHandler {
	logger = logger.With().Str("component", "leaderboard_ws").Logger()
	return &StreamHandler{
		http: &HTTPHandler{ranks: ranks, quizzes: quizzes, logger: logger},
		hub:  hub,
		auth: authn,
		topN: topN,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// Handle serves GET /ws/quizzes/{quiz_id}/leaderboard?token=...
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w, http.MethodGet)
		return
	}
	if h.http.ranks == nil || h.hub == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeFeatureNotAvailable, "Leaderboard is not enabled")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = auth.BearerToken(r)
	}
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
		return
	}
	user, err := h.auth.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Could not validate credentials")
			return
		}
		h.logger.Error().Err(err).Msg("stream authentication failed")
		httperrors.RespondInternalError(w)
		return
	}

	quizID, ok := h.http.resolveQuiz(w, r)
	if !ok {
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	connLogger := h.logger.With().
		Str("user_id", user.ID.String()).
		Str("quiz_id", quizID.String()).
		Logger()
	conn := ws.NewConnection(raw, connLogger)
	topic := Topic(quizID)
	h.hub.Subscribe(topic, conn)
	defer func() {
		h.hub.Unsubscribe(topic, conn)
		conn.Close()
	}()

	go conn.WritePump()

	if top, err := h.http.ranks.Top(r.Context(), quizID, h.topN); err != nil {
		connLogger.Warn().Err(err).Msg("initial leaderboard fetch failed")
	} else if msg, err := ws.NewMessage(ws.TypeLeaderboardSnapshot, toWSPayload(Update{QuizID: quizID, Top: top})); err == nil {
		conn.Send(msg)
	}

	connLogger.Info().Msg("leaderboard stream opened")
	conn.ReadPump(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		default:
			errMsg, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: "unsupported_message", Message: "Unsupported message type"})
			if err != nil {
				return err
			}
			errMsg.RequestID = msg.RequestID
			return conn.Send(errMsg)
		}
	})
	connLogger.Info().Msg("leaderboard stream closed")
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
