package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrBookNotFound = errors.New("book not found")

// Conf is the catalog store over postgres.
type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

const bookColumns = `
	b.id, b.title, b.author, b.description, b.price, b.image,
	b.is_available, b.category_id, c.name, b.created_at, b.updated_at`

func scanBook(row interface{ Scan(dest ...any) error }) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Price, &b.Image,
		&b.IsAvailable, &b.CategoryID, &b.CategoryName, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// GetBookByID fetches one book regardless of availability; callers decide
// whether an unavailable book is acceptable for their operation.
func (c *Conf) GetBookByID(ctx context.Context, bookID string) (Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books b
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`
	b, err := scanBook(c.db.QueryRowContext(ctx, query, bookID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, fmt.Errorf("failed to query book %s: %w", bookID, err)
	}
	return b, nil
}

// ListAvailableBooks returns available books matching the filters, newest
// first.
func (c *Conf) ListAvailableBooks(ctx context.Context, filters ListFilters) ([]Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books b
		JOIN categories c ON c.id = b.category_id
		WHERE b.is_available = TRUE
	`
	var args []any

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		p := fmt.Sprintf("$%d", len(args))
		query += ` AND (b.title ILIKE ` + p + ` OR b.author ILIKE ` + p + ` OR b.description ILIKE ` + p + `)`
	}
	if filters.CategorySlug != "" {
		args = append(args, filters.CategorySlug)
		query += fmt.Sprintf(` AND c.slug = $%d`, len(args))
	}

	query += ` ORDER BY b.created_at DESC`

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return out, nil
}

func (c *Conf) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return out, nil
}
