package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type userBookRepository struct {
	db *sql.DB
}

func NewUserBookRepository(db *sql.DB) ports.UserBookRepository {
	return &userBookRepository{db: db}
}

const userBookColumns = `id, user_id, book_id, owned, reading_status, COALESCE(review, ''), rating, progress, started_at, finished_at, created_at, updated_at`

func (r *userBookRepository) Save(ctx context.Context, userBook *domain.UserBook) error {
	query := `
		INSERT INTO user_books (id, user_id, book_id, owned, reading_status, review, rating, progress, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		userBook.ID, userBook.UserID, userBook.BookID, userBook.Owned, userBook.ReadingStatus,
		userBook.Review, userBook.Rating, userBook.Progress, userBook.StartedAt, userBook.FinishedAt,
	).Scan(&userBook.CreatedAt, &userBook.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user book: %w", err)
	}
	return nil
}

func (r *userBookRepository) Get(ctx context.Context, userID, bookID uuid.UUID) (*domain.UserBook, error) {
	query := `SELECT ` + userBookColumns + ` FROM user_books WHERE user_id = $1 AND book_id = $2`
	userBook := &domain.UserBook{}
	err := r.db.QueryRowContext(ctx, query, userID, bookID).Scan(
		&userBook.ID, &userBook.UserID, &userBook.BookID, &userBook.Owned, &userBook.ReadingStatus,
		&userBook.Review, &userBook.Rating, &userBook.Progress, &userBook.StartedAt, &userBook.FinishedAt,
		&userBook.CreatedAt, &userBook.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user book: %w", err)
	}
	return userBook, nil
}

func (r *userBookRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserBook, error) {
	query := `SELECT ` + userBookColumns + ` FROM user_books WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user books: %w", err)
	}
	defer rows.Close()

	var userBooks []*domain.UserBook
	for rows.Next() {
		userBook := &domain.UserBook{}
		if err := rows.Scan(
			&userBook.ID, &userBook.UserID, &userBook.BookID, &userBook.Owned, &userBook.ReadingStatus,
			&userBook.Review, &userBook.Rating, &userBook.Progress, &userBook.StartedAt, &userBook.FinishedAt,
			&userBook.CreatedAt, &userBook.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user book: %w", err)
		}
		userBooks = append(userBooks, userBook)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user books: %w", err)
	}
	return userBooks, nil
}

func (r *userBookRepository) Update(ctx context.Context, userBook *domain.UserBook) error {
	query := `
		UPDATE user_books
		SET owned = $2, reading_status = $3, review = NULLIF($4, ''), rating = $5,
		    progress = $6, started_at = $7, finished_at = $8, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		userBook.ID, userBook.Owned, userBook.ReadingStatus, userBook.Review,
		userBook.Rating, userBook.Progress, userBook.StartedAt, userBook.FinishedAt,
	).Scan(&userBook.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user book: %w", err)
	}
	return nil
}
