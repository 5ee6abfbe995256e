package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spine/api/internal/core/ports"
)

const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Client queries the Google Books volumes API and normalizes results into
// ports.SearchResult values.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) ports.BookMetadataProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Authors             []string `json:"authors"`
		PublishedDate       string   `json:"publishedDate"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (c *Client) Search(ctx context.Context, query string, maxResults, startIndex int) (*ports.SearchPage, error) {
	u, err := url.Parse(c.baseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("startIndex", strconv.Itoa(startIndex))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google books request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google books api error: %s", resp.Status)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]ports.SearchResult, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, transformVolume(item))
	}

	return &ports.SearchPage{
		Results:      results,
		TotalResults: body.TotalItems,
		HasMore:      startIndex+maxResults < body.TotalItems,
	}, nil
}

func transformVolume(item volume) ports.SearchResult {
	result := ports.SearchResult{
		ID:            item.ID,
		Title:         item.VolumeInfo.Title,
		Authors:       item.VolumeInfo.Authors,
		Thumbnail:     item.VolumeInfo.ImageLinks.Thumbnail,
		PublishedDate: item.VolumeInfo.PublishedDate,
	}
	if result.Authors == nil {
		result.Authors = []string{}
	}

	var isbn10 string
	for _, identifier := range item.VolumeInfo.IndustryIdentifiers {
		switch identifier.Type {
		case "ISBN_13":
			result.ISBN = identifier.Identifier
		case "ISBN_10":
			isbn10 = identifier.Identifier
		}
	}
	if result.ISBN == "" && isbn10 != "" {
		if isbn13, err := ISBN10To13(isbn10); err == nil {
			result.ISBN = isbn13
		}
	}
	return result
}
