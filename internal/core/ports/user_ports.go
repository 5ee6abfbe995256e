package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// GetByIdentifier resolves an email-or-username login identifier.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
}

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.User, error)
}
