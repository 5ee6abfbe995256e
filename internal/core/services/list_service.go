package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type listService struct {
	listRepo ports.ListRepository
	bookRepo ports.BookRepository
}

func NewListService(listRepo ports.ListRepository, bookRepo ports.BookRepository) ports.ListService {
	return &listService{
		listRepo: listRepo,
		bookRepo: bookRepo,
	}
}

func (s *listService) Create(ctx context.Context, userID uuid.UUID, input ports.CreateListInput) (*domain.List, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	now := time.Now()
	list := &domain.List{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.listRepo.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *listService) GetList(ctx context.Context, userID uuid.UUID, id string) (*domain.List, error) {
	list, err := s.ownedList(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *listService) UserLists(ctx context.Context, userID uuid.UUID) ([]*domain.List, error) {
	lists, err := s.listRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}
	return lists, nil
}

func (s *listService) AddBook(ctx context.Context, userID uuid.UUID, listID, bookID string) error {
	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return err
	}

	bID, err := uuid.Parse(bookID)
	if err != nil {
		return domain.ErrInvalidInput
	}
	if _, err := s.bookRepo.GetByID(ctx, bID); err != nil {
		return err
	}

	return s.listRepo.AddBook(ctx, list.ID, bID)
}

func (s *listService) RemoveBook(ctx context.Context, userID uuid.UUID, listID, bookID string) error {
	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return err
	}

	bID, err := uuid.Parse(bookID)
	if err != nil {
		return domain.ErrInvalidInput
	}

	return s.listRepo.RemoveBook(ctx, list.ID, bID)
}

// ownedList resolves a list id and enforces that it belongs to the caller.
// Foreign lists are reported as not found rather than forbidden.
func (s *listService) ownedList(ctx context.Context, userID uuid.UUID, id string) (*domain.List, error) {
	listID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != userID {
		return nil, domain.ErrListNotFound
	}
	return list, nil
}
