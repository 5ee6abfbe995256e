package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/spine/api/internal/core/domain"
	"github.com/spine/api/internal/core/ports"
)

type listRepository struct {
	db *sql.DB
}

func NewListRepository(db *sql.DB) ports.ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) Save(ctx context.Context, list *domain.List) error {
	query := `
		INSERT INTO lists (id, user_id, title, description)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, list.ID, list.UserID, list.Title, list.Description).
		Scan(&list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}
	return nil
}

func (r *listRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	query := `
		SELECT id, user_id, title, COALESCE(description, ''), created_at, updated_at
		FROM lists
		WHERE id = $1
	`
	list := &domain.List{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID, &list.UserID, &list.Title, &list.Description, &list.CreatedAt, &list.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	books, err := r.fetchBooks(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	list.Books = books

	return list, nil
}

func (r *listRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.List, error) {
	query := `
		SELECT id, user_id, title, COALESCE(description, ''), created_at, updated_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}
	defer rows.Close()

	var lists []*domain.List
	for rows.Next() {
		list := &domain.List{}
		if err := rows.Scan(&list.ID, &list.UserID, &list.Title, &list.Description, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}
	return lists, nil
}

func (r *listRepository) AddBook(ctx context.Context, listID, bookID uuid.UUID) error {
	query := `
		INSERT INTO list_books (list_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, listID, bookID); err != nil {
		return fmt.Errorf("failed to add book to list: %w", err)
	}
	return nil
}

func (r *listRepository) RemoveBook(ctx context.Context, listID, bookID uuid.UUID) error {
	query := `DELETE FROM list_books WHERE list_id = $1 AND book_id = $2`
	if _, err := r.db.ExecContext(ctx, query, listID, bookID); err != nil {
		return fmt.Errorf("failed to remove book from list: %w", err)
	}
	return nil
}

func (r *listRepository) fetchBooks(ctx context.Context, listID uuid.UUID) ([]domain.Book, error) {
	query := `
		SELECT b.id, b.title, COALESCE(b.isbn, ''), b.date_published, b.pages,
		       COALESCE(b.overview, ''), COALESCE(b.image, ''), COALESCE(b.synopsis, ''),
		       b.authors, b.created_at, b.updated_at
		FROM books b
		JOIN list_books lb ON lb.book_id = b.id
		WHERE lb.list_id = $1
		ORDER BY lb.added_at
	`
	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to get list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var book domain.Book
		var pages sql.NullInt64
		if err := rows.Scan(
			&book.ID, &book.Title, &book.ISBN, &book.DatePublished, &pages,
			&book.Overview, &book.Image, &book.Synopsis, pq.Array(&book.Authors),
			&book.CreatedAt, &book.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan list book: %w", err)
		}
		book.Pages = int(pages.Int64)
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list books: %w", err)
	}
	return books, nil
}
