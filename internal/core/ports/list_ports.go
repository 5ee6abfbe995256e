package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
)

type ListRepository interface {
	Save(ctx context.Context, list *domain.List) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.List, error)
	AddBook(ctx context.Context, listID, bookID uuid.UUID) error
	RemoveBook(ctx context.Context, listID, bookID uuid.UUID) error
}

type CreateListInput struct {
	Title       string
	Description string
}

type ListService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateListInput) (*domain.List, error)
	GetList(ctx context.Context, userID uuid.UUID, id string) (*domain.List, error)
	UserLists(ctx context.Context, userID uuid.UUID) ([]*domain.List, error)
	AddBook(ctx context.Context, userID uuid.UUID, listID, bookID string) error
	RemoveBook(ctx context.Context, userID uuid.UUID, listID, bookID string) error
}
