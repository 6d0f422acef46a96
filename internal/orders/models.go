package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "pending"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Order owns its items; the total is computed once at commit time from the
// captured unit prices and never recomputed from live book prices.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Items      []OrderItem     `json:"items,omitempty"`
}

// OrderItem references a book but does not own it: a book stays referenced
// by historical orders even after its availability flips. Title is
// denormalized so history survives catalog edits.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   string          `json:"order_id"`
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
