package cart

import (
	"testing"

	"bookstore-service/internal/books"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleBook(id, title, price string) books.Book {
	return books.Book{
		ID:          id,
		Title:       title,
		Author:      "Test Author",
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
}

func TestAddAccumulatesQuantity(t *testing.T) {
	c := NewCart()
	book := sampleBook("b1", "The Great Gatsby", "299.00")

	require.NoError(t, c.Add(book, 1))
	require.NoError(t, c.Add(book, 2))

	require.Equal(t, 3, c.Entries["b1"].Quantity)
	require.Equal(t, 3, c.ItemCount())
}

func TestAddKeepsCapturedPrice(t *testing.T) {
	c := NewCart()
	book := sampleBook("b1", "The Great Gatsby", "299.00")
	require.NoError(t, c.Add(book, 1))

	// A catalog price change after the first add must not affect the cart.
	book.Price = decimal.RequireFromString("999.00")
	require.NoError(t, c.Add(book, 1))

	require.True(t, c.Entries["b1"].UnitPrice.Equal(decimal.RequireFromString("299.00")))
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	c := NewCart()
	book := sampleBook("b1", "The Great Gatsby", "299.00")

	require.ErrorIs(t, c.Add(book, 0), ErrInvalidQuantity)
	require.ErrorIs(t, c.Add(book, -1), ErrInvalidQuantity)
	require.True(t, c.IsEmpty())
}

func TestUpdateReplacesQuantity(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 5))

	require.NoError(t, c.Update("b1", 2))
	require.Equal(t, 2, c.Entries["b1"].Quantity)
}

func TestUpdateToZeroRemovesEntry(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 2))

	require.NoError(t, c.Update("b1", 0))
	require.True(t, c.IsEmpty())
}

func TestUpdateAbsentEntry(t *testing.T) {
	c := NewCart()

	// Setting a positive quantity on an absent book is an error.
	require.ErrorIs(t, c.Update("ghost", 3), ErrNotInCart)

	// Removing an absent book via update stays a no-op.
	require.NoError(t, c.Update("ghost", 0))
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 1))

	c.Remove("b1")
	c.Remove("b1")
	c.Remove("never-added")
	require.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 1))
	require.NoError(t, c.Add(sampleBook("b2", "1984", "349.00"), 2))

	c.Clear()
	require.True(t, c.IsEmpty())
	require.Equal(t, 0, c.ItemCount())
}

func TestSnapshotTotals(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 2))
	require.NoError(t, c.Add(sampleBook("b2", "1984", "349.00"), 1))

	snap := c.Snapshot()
	require.Len(t, snap.Items, 2)
	require.Equal(t, 3, snap.ItemCount)
	require.True(t, snap.TotalPrice.Equal(decimal.RequireFromString("947.00")),
		"got %s", snap.TotalPrice)

	// Sorted by title: "1984" before "The Great Gatsby".
	require.Equal(t, "b2", snap.Items[0].BookID)
	require.True(t, snap.Items[0].LineTotal.Equal(decimal.RequireFromString("349.00")))
	require.Equal(t, "b1", snap.Items[1].BookID)
	require.True(t, snap.Items[1].LineTotal.Equal(decimal.RequireFromString("598.00")))
}

func TestItemCountMatchesSnapshot(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 2))
	require.NoError(t, c.Add(sampleBook("b2", "1984", "349.00"), 4))
	require.NoError(t, c.Update("b2", 1))
	c.Remove("b1")
	require.NoError(t, c.Add(sampleBook("b3", "Dune", "499.00"), 3))

	require.Equal(t, c.ItemCount(), c.Snapshot().ItemCount)
	require.Equal(t, 4, c.ItemCount())
}
