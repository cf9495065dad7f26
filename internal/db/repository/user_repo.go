package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gokatarajesh/quiz-api/internal/db/queries"
	"github.com/gokatarajesh/quiz-api/internal/domain"
)

type userStore interface {
	CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error)
	GetUserByEmail(ctx context.Context, email string) (queries.User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (queries.User, error)
	UpdateUserLogin(ctx context.Context, id pgtype.UUID) error
}

// UserRepository exposes typed DB operations required by auth flows.
type UserRepository struct {
	store userStore
}

func NewUserRepository(store userStore) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts an account. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, email, name, passwordHash string, isAdmin bool) (domain.User, error) {
	row, err := r.store.CreateUser(ctx, queries.CreateUserParams{
		Email:          email,
		Name:           name,
		HashedPassword: passwordHash,
		IsAdmin:        isAdmin,
	})
	if err != nil {
		return domain.User{}, translate(err)
	}
	return toDomainUser(row), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.store.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, translate(err)
	}
	return toDomainUser(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row, err := r.store.GetUserByID(ctx, pgUUID(id))
	if err != nil {
		return domain.User{}, translate(err)
	}
	return toDomainUser(row), nil
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, id uuid.UUID) error {
	return translate(r.store.UpdateUserLogin(ctx, pgUUID(id)))
}

func toDomainUser(row queries.User) domain.User {
	u := domain.User{
		ID:           fromPGUUID(row.ID),
		Email:        row.Email,
		Name:         row.Name,
		PasswordHash: row.HashedPassword,
		IsAdmin:      row.IsAdmin,
		CreatedAt:    row.CreatedAt.Time,
	}
	if row.LastLogin.Valid {
		t := row.LastLogin.Time
		u.LastLogin = &t
	}
	return u
}
