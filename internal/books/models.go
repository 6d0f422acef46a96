package books

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a single-copy listing: availability is binary and flips to false
// exactly once when the copy is sold.
type Book struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"` // fixed-point, two places
	Image        string          `json:"image"`
	IsAvailable  bool            `json:"is_available"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ListFilters narrows ListAvailableBooks; zero values mean "no filter".
type ListFilters struct {
	Search       string // matches title, author or description
	CategorySlug string
	Limit        int
	Offset       int
}
