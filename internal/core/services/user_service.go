package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) ports.UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*domain.User, error) {
	if err := s.repo.UpdateName(ctx, id, name); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetByID(ctx, id)
}
