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

type bookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) ports.BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, COALESCE(isbn, ''), date_published, pages, COALESCE(overview, ''), COALESCE(image, ''), COALESCE(synopsis, ''), authors, created_at, updated_at`

func (r *bookRepository) Save(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (id, title, isbn, date_published, pages, overview, image, synopsis, authors)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		book.ID, book.Title, book.ISBN, book.DatePublished, book.Pages,
		book.Overview, book.Image, book.Synopsis, pq.Array(book.Authors),
	).Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return r.scanBook(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	book, err := r.scanBook(r.db.QueryRowContext(ctx, query, isbn))
	if errors.Is(err, domain.ErrBookNotFound) {
		return nil, nil
	}
	return book, err
}

func (r *bookRepository) List(ctx context.Context, limit, offset int) ([]*domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{}
		var pages sql.NullInt64
		if err := rows.Scan(
			&book.ID, &book.Title, &book.ISBN, &book.DatePublished, &pages,
			&book.Overview, &book.Image, &book.Synopsis, pq.Array(&book.Authors),
			&book.CreatedAt, &book.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		book.Pages = int(pages.Int64)
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return books, nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (r *bookRepository) scanBook(row *sql.Row) (*domain.Book, error) {
	book := &domain.Book{}
	var pages sql.NullInt64
	err := row.Scan(
		&book.ID, &book.Title, &book.ISBN, &book.DatePublished, &pages,
		&book.Overview, &book.Image, &book.Synopsis, pq.Array(&book.Authors),
		&book.CreatedAt, &book.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	book.Pages = int(pages.Int64)
	return book, nil
}
