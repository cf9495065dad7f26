package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrNotAdmin           = errors.New("not enough permissions")
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

type userRepository interface {
	Create(ctx context.Context, email, name, passwordHash string, isAdmin bool) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateLogin(ctx context.Context, id uuid.UUID) error
}

// Service handles authentication and user management.
type Service struct {
	users      userRepository
	tokenMgr   *jwt.Manager
	bcryptCost int
	logger     zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
	// BcryptCost defaults to 12; tests lower it.
	BcryptCost int
}

// NewService creates an authentication service.
func NewService(users userRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcryptCost
	}
	return &Service{
		users:      users,
		tokenMgr:   jwt.NewManager(opts.TokenConfig),
		bcryptCost: cost,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email    string
	Name     string
	Password string
	IsAdmin  bool
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Register creates a new account. The email is checked up front; the unique
// constraint covers concurrent registrations.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	email := strings.TrimSpace(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := hashPasswordCost(req.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordTooShort) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, strings.TrimSpace(req.Name), hash, req.IsAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Bool("is_admin", user.IsAdmin).Msg("user registered")
	return user, nil
}

// Authenticate checks email and password. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues an access token. A failure to record the
// login time is logged and does not block the login.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}

	if err := s.users.UpdateLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to record last login")
	}

	access, expires, err := s.tokenMgr.GenerateAccessToken(user.Email)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return Token{AccessToken: access, TokenType: TokenTypeBearer, ExpiresAt: expires}, nil
}

// ValidateToken validates an access token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// CurrentUser resolves the account behind a bearer token. Bad tokens and
// tokens for unknown accounts both yield ErrUnauthorized.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (domain.User, error) {
	claims, err := s.tokenMgr.ValidateAccessToken(tokenString)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.users.GetByEmail(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

// RequireAdmin returns ErrNotAdmin unless user is an administrator.
func RequireAdmin(user domain.User) error {
	if !user.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}
