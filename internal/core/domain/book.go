package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReadingStatus string

const (
	ReadingStatusNotStarted ReadingStatus = "NOT_STARTED"
	ReadingStatusReading    ReadingStatus = "READING"
	ReadingStatusCompleted  ReadingStatus = "COMPLETED"
	ReadingStatusAbandoned  ReadingStatus = "ABANDONED"
)

func (s ReadingStatus) Valid() bool {
	switch s {
	case ReadingStatusNotStarted, ReadingStatusReading, ReadingStatusCompleted, ReadingStatusAbandoned:
		return true
	}
	return false
}

type Book struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	ISBN          string     `json:"isbn,omitempty"`
	DatePublished *time.Time `json:"date_published,omitempty"`
	Pages         int        `json:"pages,omitempty"`
	Overview      string     `json:"overview,omitempty"`
	Image         string     `json:"image,omitempty"`
	Synopsis      string     `json:"synopsis,omitempty"`
	Authors       []string   `json:"authors"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserBook tracks a user's relationship with a book: ownership, reading
// progress and review.
type UserBook struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	BookID        uuid.UUID     `json:"book_id"`
	Owned         bool          `json:"owned"`
	ReadingStatus ReadingStatus `json:"reading_status"`
	Review        string        `json:"review,omitempty"`
	Rating        *int          `json:"rating,omitempty"`
	Progress      *int          `json:"progress,omitempty"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
