package auth

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
	"github.com/gokatarajesh/quiz-api/pkg/http/request"
)

// HTTPHandlers provides REST endpoints for authentication.
type HTTPHandlers struct {
	authSvc *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc: authSvc,
		logger:  logger.With().Str("component", "auth_http").Logger(),
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginCredentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /token. Credentials arrive as an urlencoded form or a
// JSON object with username (the email) and password.
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w, http.MethodPost)
		return
	}

	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.authSvc.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidCredentials, "Incorrect username or password")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		httperrors.RespondInternalError(w)
		return
	}

	h.respondJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

func (h *HTTPHandlers) readCredentials(w http.ResponseWriter, r *http.Request) (loginCredentials, bool) {
	var creds loginCredentials

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		httperrors.RespondUnsupportedMediaType(w, "Content-Type must be application/x-www-form-urlencoded or application/json")
		return creds, false
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, request.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			httperrors.RespondValidationError(w, "Malformed form body", "")
			return creds, false
		}
		creds.Username = r.PostForm.Get("username")
		creds.Password = r.PostForm.Get("password")
		if err := request.Validate(&creds); err != nil {
			httperrors.RespondDecodeError(w, err)
			return creds, false
		}
	case "application/json":
		if err := request.DecodeJSON(r, &creds); err != nil {
			httperrors.RespondDecodeError(w, err)
			return creds, false
		}
	default:
		httperrors.RespondUnsupportedMediaType(w, "Content-Type must be application/x-www-form-urlencoded or application/json")
		return creds, false
	}
	return creds, true
}

// Register handles POST /users/register
func (h *HTTPHandlers) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req registerRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		httperrors.RespondDecodeError(w, err)
		return
	}

	user, err := h.authSvc.Register(r.Context(), RegisterRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			httperrors.RespondBadRequest(w, httperrors.ErrCodeAlreadyExists, "Email already registered")
		case errors.Is(err, ErrPasswordTooShort):
			httperrors.RespondValidationError(w, err.Error(), "password")
		default:
			h.logger.Error().Err(err).Msg("registration failed")
			httperrors.RespondInternalError(w)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, user)
}

// GetMe handles GET /users/me (requires auth middleware)
func (h *HTTPHandlers) GetMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w, http.MethodGet)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Not authenticated")
		return
	}

	h.respondJSON(w, http.StatusOK, user)
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
