package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

const defaultBookPageSize = 20

type bookService struct {
	bookRepo     ports.BookRepository
	userBookRepo ports.UserBookRepository
}

func NewBookService(bookRepo ports.BookRepository, userBookRepo ports.UserBookRepository) ports.BookService {
	return &bookService{
		bookRepo:     bookRepo,
		userBookRepo: userBookRepo,
	}
}

func (s *bookService) Create(ctx context.Context, input ports.CreateBookInput) (*domain.Book, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	if input.ISBN != "" {
		existing, err := s.bookRepo.GetByISBN(ctx, input.ISBN)
		if err != nil && !errors.Is(err, domain.ErrBookNotFound) {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := time.Now()
	book := &domain.Book{
		ID:            uuid.New(),
		Title:         input.Title,
		ISBN:          input.ISBN,
		DatePublished: input.DatePublished,
		Pages:         input.Pages,
		Overview:      input.Overview,
		Image:         input.Image,
		Synopsis:      input.Synopsis,
		Authors:       input.Authors,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	bookID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return s.bookRepo.GetByID(ctx, bookID)
}

func (s *bookService) ListBooks(ctx context.Context, input ports.ListBooksInput) (*ports.BookPage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultBookPageSize
	}

	count, err := s.bookRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}

	books, err := s.bookRepo.List(ctx, limit, domain.PageOffset(page, limit))
	if err != nil {
		return nil, err
	}

	return &ports.BookPage{
		Books:      books,
		Pagination: domain.NewPaginated(count, page, limit),
	}, nil
}

func (s *bookService) TrackBook(ctx context.Context, userID uuid.UUID, input ports.UpsertUserBookInput) (*domain.UserBook, error) {
	if input.ReadingStatus == "" {
		input.ReadingStatus = domain.ReadingStatusNotStarted
	}
	if !input.ReadingStatus.Valid() {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		return nil, err
	}

	now := time.Now()
	existing, err := s.userBookRepo.Get(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		userBook := &domain.UserBook{
			ID:            uuid.New(),
			UserID:        userID,
			BookID:        input.BookID,
			Owned:         input.Owned,
			ReadingStatus: input.ReadingStatus,
			Review:        input.Review,
			Rating:        input.Rating,
			Progress:      input.Progress,
			StartedAt:     input.StartedAt,
			FinishedAt:    input.FinishedAt,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.userBookRepo.Save(ctx, userBook); err != nil {
			return nil, err
		}
		return userBook, nil
	}

	existing.Owned = input.Owned
	existing.ReadingStatus = input.ReadingStatus
	existing.Review = input.Review
	existing.Rating = input.Rating
	existing.Progress = input.Progress
	existing.StartedAt = input.StartedAt
	existing.FinishedAt = input.FinishedAt
	existing.UpdatedAt = now

	if err := s.userBookRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *bookService) Shelf(ctx context.Context, userID uuid.UUID) ([]*domain.UserBook, error) {
	return s.userBookRepo.ListByUser(ctx, userID)
}
