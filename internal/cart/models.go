package cart

import "github.com/shopspring/decimal"

// Entry is one cart line. Title, author, image and the unit price are
// captured when the book is first added; the captured price is what the
// customer saw and is the price the checkout total commits to.
type Entry struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Image     string          `json:"image"`
}

// Cart is the session-scoped record of intended purchases, keyed by book id.
// It is a plain value: storage and transport concerns live in Store.
type Cart struct {
	Entries map[string]Entry `json:"entries"`
}

// SnapshotItem is a cart line with its computed total, ready for display or
// checkout.
type SnapshotItem struct {
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Snapshot is the full cart state at a point in time. It feeds both the cart
// page and the checkout engine.
type Snapshot struct {
	Items      []SnapshotItem  `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
}
