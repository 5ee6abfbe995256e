package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
)

type BookRepository interface {
	Save(ctx context.Context, book *domain.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*domain.Book, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Book, error)
	Count(ctx context.Context) (int64, error)
}

type UserBookRepository interface {
	Save(ctx context.Context, userBook *domain.UserBook) error
	Get(ctx context.Context, userID, bookID uuid.UUID) (*domain.UserBook, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserBook, error)
	Update(ctx context.Context, userBook *domain.UserBook) error
}

type CreateBookInput struct {
	Title         string
	ISBN          string
	DatePublished *time.Time
	Pages         int
	Overview      string
	Image         string
	Synopsis      string
	Authors       []string
}

type UpsertUserBookInput struct {
	BookID        uuid.UUID
	Owned         bool
	ReadingStatus domain.ReadingStatus
	Review        string
	Rating        *int
	Progress      *int
	StartedAt     *time.Time
	FinishedAt    *time.Time
}

type ListBooksInput struct {
	Page  int
	Limit int
}

type BookPage struct {
	Books      []*domain.Book   `json:"result"`
	Pagination domain.Paginated `json:"pagination"`
}

type BookService interface {
	Create(ctx context.Context, input CreateBookInput) (*domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, input ListBooksInput) (*BookPage, error)
	TrackBook(ctx context.Context, userID uuid.UUID, input UpsertUserBookInput) (*domain.UserBook, error)
	Shelf(ctx context.Context, userID uuid.UUID) ([]*domain.UserBook, error)
}
