package ports

import "context"

// SearchResult is a normalized book hit from an external metadata provider.
type SearchResult struct {
	ID            string   `json:"id"`
	ISBN          string   `json:"isbn,omitempty"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
}

type SearchPage struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"totalResults"`
	HasMore      bool           `json:"hasMore"`
}

// BookMetadataProvider is the third-party catalog the search endpoint
// queries (Google Books in production).
type BookMetadataProvider interface {
	Search(ctx context.Context, query string, maxResults, startIndex int) (*SearchPage, error)
}

type SearchService interface {
	Search(ctx context.Context, query string, page int) (*SearchPage, error)
}
