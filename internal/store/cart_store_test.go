package store

import (
	"testing"

	"github.com/internity/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midnightOud(size string, qty int, price float64) domain.CartLineItem {
	return domain.CartLineItem{
		ID:       "midnight-oud",
		Name:     "Midnight Oud",
		Price:    price,
		Image:    "https://images.example.com/midnight-oud.jpg",
		Size:     size,
		Quantity: qty,
	}
}

func TestAddItem_SameIDAndSizeMergesQuantities(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("100ml", 2, 295)))
	require.NoError(t, sut.AddItem(midnightOud("100ml", 2, 295)))

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func TestAddItem_MergeKeepsOriginalCapturedFields(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))

	// Second add with a different captured price must not re-capture.
	second := midnightOud("100ml", 1, 999)
	second.Name = "Renamed"
	require.NoError(t, sut.AddItem(second))

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 295.0, items[0].Price)
	assert.Equal(t, "Midnight Oud", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItem_DifferentSizesStayDistinctLines(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("50ml", 1, 195)))
	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))

	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "50ml", items[0].Size)
	assert.Equal(t, "100ml", items[1].Size)
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	sut := NewCartStore()

	assert.ErrorIs(t, sut.AddItem(midnightOud("100ml", 0, 295)), ErrInvalidQuantity)
	assert.ErrorIs(t, sut.AddItem(midnightOud("100ml", -3, 295)), ErrInvalidQuantity)
	assert.Empty(t, sut.Items())
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(domain.CartLineItem{ID: "rose-petale", Size: "75ml", Quantity: 1, Price: 245}))
	require.NoError(t, sut.AddItem(domain.CartLineItem{ID: "citrus-bloom", Size: "100ml", Quantity: 1, Price: 195}))
	require.NoError(t, sut.AddItem(domain.CartLineItem{ID: "rose-petale", Size: "75ml", Quantity: 1, Price: 245}))

	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "rose-petale", items[0].ID)
	assert.Equal(t, "citrus-bloom", items[1].ID)
}

func TestRemoveItem_RemovesAllSizeVariantsOfProduct(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("50ml", 1, 195)))
	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))
	require.NoError(t, sut.AddItem(domain.CartLineItem{ID: "velvet-noir", Size: "50ml", Quantity: 1, Price: 345}))

	sut.RemoveItem("midnight-oud")

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "velvet-noir", items[0].ID)
}

func TestUpdateQuantity_ZeroOrNegativeRemovesLine(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("100ml", 2, 295)))
	sut.UpdateQuantity("midnight-oud", 0)
	assert.Empty(t, sut.Items())

	require.NoError(t, sut.AddItem(midnightOud("100ml", 2, 295)))
	sut.UpdateQuantity("midnight-oud", -5)
	assert.Empty(t, sut.Items())
}

func TestUpdateQuantity_SetsAbsoluteValueOnEveryVariant(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("50ml", 1, 195)))
	require.NoError(t, sut.AddItem(midnightOud("100ml", 4, 295)))

	sut.UpdateQuantity("midnight-oud", 2)

	items := sut.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestTotals_EmptyCartIsZero(t *testing.T) {
	sut := NewCartStore()

	assert.Equal(t, 0, sut.TotalItems())
	assert.Equal(t, 0.0, sut.TotalPrice())
}

func TestTotals_AlwaysMatchRecomputationFromItems(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))
	require.NoError(t, sut.AddItem(domain.CartLineItem{ID: "rose-petale", Size: "75ml", Quantity: 3, Price: 245}))
	sut.UpdateQuantity("rose-petale", 2)
	require.NoError(t, sut.AddItem(midnightOud("50ml", 1, 195)))
	sut.RemoveItem("does-not-exist")

	items := sut.Items()
	wantCount := 0
	wantPrice := 0.0
	for _, item := range items {
		wantCount += item.Quantity
		wantPrice += item.Price * float64(item.Quantity)
	}
	assert.Equal(t, wantCount, sut.TotalItems())
	assert.Equal(t, wantPrice, sut.TotalPrice())
}

// Mirrors the reference shopping journey end to end.
func TestCart_ShoppingScenario(t *testing.T) {
	sut := NewCartStore()

	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))
	assert.Equal(t, 1, sut.TotalItems())
	assert.Equal(t, 295.0, sut.TotalPrice())

	require.NoError(t, sut.AddItem(midnightOud("100ml", 2, 295)))
	assert.Equal(t, 3, sut.TotalItems())
	assert.Equal(t, 885.0, sut.TotalPrice())

	sut.UpdateQuantity("midnight-oud", 1)
	assert.Equal(t, 295.0, sut.TotalPrice())

	sut.RemoveItem("midnight-oud")
	assert.Empty(t, sut.Items())
}

func TestVisibilityToggles_DoNotTouchItems(t *testing.T) {
	sut := NewCartStore()
	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))

	assert.False(t, sut.IsOpen())
	sut.Open()
	assert.True(t, sut.IsOpen())
	sut.Toggle()
	assert.False(t, sut.IsOpen())
	sut.Toggle()
	assert.True(t, sut.IsOpen())
	sut.Close()
	assert.False(t, sut.IsOpen())

	assert.Len(t, sut.Items(), 1)
}

func TestClear_EmptiesItemsButKeepsDrawerState(t *testing.T) {
	sut := NewCartStore()
	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))
	sut.Open()

	sut.Clear()

	assert.Empty(t, sut.Items())
	assert.True(t, sut.IsOpen())
}

func TestSubscribe_NotifiesSnapshotAfterEveryItemMutation(t *testing.T) {
	sut := NewCartStore()

	var got [][]domain.CartLineItem
	sut.Subscribe(func(items []domain.CartLineItem) {
		got = append(got, items)
	})

	require.NoError(t, sut.AddItem(midnightOud("100ml", 2, 295)))
	sut.UpdateQuantity("midnight-oud", 5)
	sut.RemoveItem("midnight-oud")
	sut.Clear()

	require.Len(t, got, 4)
	assert.Equal(t, 2, got[0][0].Quantity)
	assert.Equal(t, 5, got[1][0].Quantity)
	assert.Empty(t, got[2])
	assert.Empty(t, got[3])
}

func TestSubscribe_VisibilityTogglesDoNotNotify(t *testing.T) {
	sut := NewCartStore()

	calls := 0
	sut.Subscribe(func([]domain.CartLineItem) { calls++ })

	sut.Open()
	sut.Toggle()
	sut.Close()

	assert.Equal(t, 0, calls)
}

func TestItems_ReturnsDefensiveCopy(t *testing.T) {
	sut := NewCartStore()
	require.NoError(t, sut.AddItem(midnightOud("100ml", 1, 295)))

	items := sut.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, sut.Items()[0].Quantity)
}

func TestNewCartStoreFrom_RehydratesItems(t *testing.T) {
	persisted := []domain.CartLineItem{
		midnightOud("100ml", 2, 295),
		{ID: "rose-petale", Name: "Rose Petale", Size: "75ml", Quantity: 1, Price: 245},
	}

	sut := NewCartStoreFrom(persisted)

	assert.Equal(t, persisted, sut.Items())
	assert.Equal(t, 3, sut.TotalItems())
	assert.False(t, sut.IsOpen())
}
