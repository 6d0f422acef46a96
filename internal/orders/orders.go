package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bookstore-service/internal/checkout"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

// Conf is the durable order store over postgres. It also implements the
// checkout.Committer unit of work.
type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (Conf, error) {
	if db == nil {
		return Conf{}, fmt.Errorf("db is nil")
	}
	return Conf{db: db}, nil
}

// CommitCheckout applies the whole plan in one transaction: lock and
// re-check every book row, create the customer, the order, its items, and
// flip each book's availability. Row locks on the books are the
// serialization point for two commits racing over the same copy — the
// loser's re-check observes is_available=false and the entire transaction
// rolls back, so at most one order ever sells a given book.
func (c *Conf) CommitCheckout(ctx context.Context, plan checkout.Plan) (string, error) {
	orderID := uuid.NewString()

	err := c.withTx(ctx, func(tx *sql.Tx) error {
		var unavailable []string
		for _, item := range plan.Items {
			var available bool
			err := tx.QueryRowContext(ctx,
				`SELECT is_available FROM books WHERE id = $1 FOR UPDATE`,
				item.BookID).Scan(&available)
			if errors.Is(err, sql.ErrNoRows) {
				unavailable = append(unavailable, item.BookID)
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to lock book %s: %w", item.BookID, err)
			}
			if !available {
				unavailable = append(unavailable, item.BookID)
			}
		}
		if len(unavailable) > 0 {
			return &checkout.UnavailableError{BookIDs: unavailable}
		}

		customerID := uuid.NewString()
		now := time.Now().UTC()

		_, err := tx.ExecContext(ctx, `
			INSERT INTO customers (id, name, email, phone, address, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			customerID, plan.Customer.Name, plan.Customer.Email,
			plan.Customer.Phone, plan.Customer.Address, now)
		if err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO orders (id, customer_id, total_price, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, customerID, plan.TotalPrice, StatusPending, now, now)
		if err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		itemStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO order_items (order_id, book_id, title, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`)
		if err != nil {
			return fmt.Errorf("failed to prepare order item insert: %w", err)
		}
		defer itemStmt.Close()

		for _, item := range plan.Items {
			if _, err := itemStmt.ExecContext(ctx,
				orderID, item.BookID, item.Title, item.Quantity, item.UnitPrice); err != nil {
				return fmt.Errorf("failed to create order item for book %s: %w", item.BookID, err)
			}

			// Mark the copy as sold. The row is already locked above.
			res, err := tx.ExecContext(ctx,
				`UPDATE books SET is_available = FALSE, updated_at = $2 WHERE id = $1`,
				item.BookID, now)
			if err != nil {
				return fmt.Errorf("failed to mark book %s as sold: %w", item.BookID, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("book %s disappeared during commit", item.BookID)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}
	return orderID, nil
}

// GetOrderByID fetches an order together with its items.
func (c *Conf) GetOrderByID(ctx context.Context, orderID string) (Order, error) {
	var o Order
	err := c.db.QueryRowContext(ctx, `
		SELECT id, customer_id, total_price, status, created_at, updated_at
		FROM orders WHERE id = $1`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("failed to query order %s: %w", orderID, err)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, order_id, book_id, title, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return Order{}, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Title,
			&item.Quantity, &item.UnitPrice); err != nil {
			return Order{}, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, fmt.Errorf("error iterating order items: %w", err)
	}
	return o, nil
}

// ListRecentOrders returns the newest orders without their items, for the
// history view.
func (c *Conf) ListRecentOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, customer_id, total_price, status, created_at, updated_at
		FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.TotalPrice, &o.Status,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return out, nil
}

func (c *Conf) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback withTx: %w", err)
		}
		return fmt.Errorf("failed to execute withTx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withTx: %w", err)
	}
	return nil
}

var _ checkout.Committer = (*Conf)(nil)
