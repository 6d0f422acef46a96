package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLoadUnknownSession(t *testing.T) {
	store := NewMemoryStore()

	c, err := store.Load(context.Background(), "fresh-session")
	require.NoError(t, err)
	require.True(t, c.IsEmpty())
	require.NotNil(t, c.Entries)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 2))
	require.NoError(t, store.Save(ctx, "s1", c))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 2, loaded.ItemCount())
	require.True(t, loaded.Entries["b1"].UnitPrice.Equal(c.Entries["b1"].UnitPrice))
}

func TestMemoryStoreIsolatesSessions(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 1))
	require.NoError(t, store.Save(ctx, "s1", c))

	other, err := store.Load(ctx, "s2")
	require.NoError(t, err)
	require.True(t, other.IsEmpty())
}

func TestMemoryStoreCopiesState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	c := NewCart()
	require.NoError(t, c.Add(sampleBook("b1", "The Great Gatsby", "299.00"), 1))
	require.NoError(t, store.Save(ctx, "s1", c))

	// Mutating the caller's cart after save must not leak into the store.
	c.Clear()

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, loaded.ItemCount())

	// Mutating a loaded cart must not leak either.
	loaded.Remove("b1")
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, again.ItemCount())
}
