package cart

import (
	"errors"
	"sort"

	"bookstore-service/internal/books"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrNotInCart       = errors.New("book is not in the cart")
)

func NewCart() Cart {
	return Cart{Entries: make(map[string]Entry)}
}

// Add puts quantity copies of the book into the cart. Adding a book that is
// already present accumulates the quantity; the price captured on first add
// is kept, not re-read.
func (c *Cart) Add(book books.Book, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}

	if entry, ok := c.Entries[book.ID]; ok {
		entry.Quantity += quantity
		c.Entries[book.ID] = entry
		return nil
	}

	c.Entries[book.ID] = Entry{
		Quantity:  quantity,
		UnitPrice: book.Price,
		Title:     book.Title,
		Author:    book.Author,
		Image:     book.Image,
	}
	return nil
}

// Update replaces the stored quantity. A quantity of zero or less removes
// the entry; a quantity <= 0 for an absent entry is a silent no-op so the
// removal stays idempotent.
func (c *Cart) Update(bookID string, quantity int) error {
	entry, ok := c.Entries[bookID]
	if !ok {
		if quantity <= 0 {
			return nil
		}
		return ErrNotInCart
	}
	if quantity <= 0 {
		delete(c.Entries, bookID)
		return nil
	}
	entry.Quantity = quantity
	c.Entries[bookID] = entry
	return nil
}

// Remove deletes the entry if present. Removing an absent book is not an
// error.
func (c *Cart) Remove(bookID string) {
	delete(c.Entries, bookID)
}

// Clear empties the cart. Called only once a checkout commit has succeeded.
func (c *Cart) Clear() {
	c.Entries = make(map[string]Entry)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

// ItemCount is the sum of stored quantities across all entries.
func (c *Cart) ItemCount() int {
	count := 0
	for _, entry := range c.Entries {
		count += entry.Quantity
	}
	return count
}

// Snapshot derives the full cart state: per-line totals from the captured
// unit prices, the grand total and the item count. It reads the map fresh on
// every call, so it can be taken as often as needed.
func (c *Cart) Snapshot() Snapshot {
	snap := Snapshot{
		Items:      make([]SnapshotItem, 0, len(c.Entries)),
		TotalPrice: decimal.Zero,
	}
	for bookID, entry := range c.Entries {
		lineTotal := entry.UnitPrice.Mul(decimal.NewFromInt(int64(entry.Quantity)))
		snap.Items = append(snap.Items, SnapshotItem{
			BookID:    bookID,
			Title:     entry.Title,
			Author:    entry.Author,
			Image:     entry.Image,
			Quantity:  entry.Quantity,
			UnitPrice: entry.UnitPrice,
			LineTotal: lineTotal,
		})
		snap.TotalPrice = snap.TotalPrice.Add(lineTotal)
		snap.ItemCount += entry.Quantity
	}
	sort.Slice(snap.Items, func(i, j int) bool {
		if snap.Items[i].Title != snap.Items[j].Title {
			return snap.Items[i].Title < snap.Items[j].Title
		}
		return snap.Items[i].BookID < snap.Items[j].BookID
	})
	return snap
}
