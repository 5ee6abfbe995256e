package services

import (
	"context"
	"fmt"

	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

const searchPageSize = 10

type searchService struct {
	provider ports.BookMetadataProvider
}

func NewSearchService(provider ports.BookMetadataProvider) ports.SearchService {
	return &searchService{
		provider: provider,
	}
}

func (s *searchService) Search(ctx context.Context, query string, page int) (*ports.SearchPage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}

	result, err := s.provider.Search(ctx, query, searchPageSize, (page-1)*searchPageSize)
	if err != nil {
		return nil, fmt.Errorf("metadata provider search failed: %w", err)
	}
	return result, nil
}
