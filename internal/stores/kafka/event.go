package kafka

import "time"

const TopicOrderPlaced = `bookstore.order-placed`

// OrderPlacedEvent is published after a checkout commit has durably
// succeeded. Consumers (fulfilment, mail) only ever see committed orders.
type OrderPlacedEvent struct {
	OrderID       string            `json:"order_id"`
	CustomerEmail string            `json:"customer_email"`
	TotalPrice    string            `json:"total_price"`
	Items         []OrderPlacedItem `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

type OrderPlacedItem struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}
