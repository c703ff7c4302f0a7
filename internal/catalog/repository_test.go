package catalog_test

import (
	"context"
	"testing"

	"github.com/internity/storefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCatalog(t *testing.T) *catalog.Repository {
	// Use in-memory database for tests
	repo, err := catalog.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations("../../migrations"))
	return repo
}

func TestListProducts_ReturnsSeededCatalogInOrder(t *testing.T) {
	repo := setupTestCatalog(t)

	products, err := repo.ListProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 8)
	assert.Equal(t, "midnight-oud", products[0].ID)
	assert.Equal(t, "garden-whisper", products[7].ID)
}

func TestListProducts_FiltersByCategory(t *testing.T) {
	repo := setupTestCatalog(t)

	products, err := repo.ListProducts(context.Background(), "For Her")
	require.NoError(t, err)
	require.Len(t, products, 3)
	for _, p := range products {
		assert.Equal(t, "For Her", p.Category)
	}

	all, err := repo.ListProducts(context.Background(), "All")
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestGetProduct_ReturnsNotesAndSizes(t *testing.T) {
	repo := setupTestCatalog(t)

	product, err := repo.GetProduct(context.Background(), "midnight-oud")
	require.NoError(t, err)

	assert.Equal(t, "Midnight Oud", product.Name)
	assert.Equal(t, 295.0, product.Price)
	assert.Equal(t, []string{"Bergamot", "Pink Pepper"}, product.Notes.Top)
	assert.Equal(t, []string{"Amber", "Musk"}, product.Notes.Base)
	require.Len(t, product.Sizes, 3)
	assert.Equal(t, "30ml", product.Sizes[0].Size)
	assert.Equal(t, 145.0, product.Sizes[0].Price)
}

func TestGetProduct_UnknownID(t *testing.T) {
	repo := setupTestCatalog(t)

	_, err := repo.GetProduct(context.Background(), "no-such-scent")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestPriceFor_SizeSpecificPricing(t *testing.T) {
	repo := setupTestCatalog(t)
	ctx := context.Background()

	price, err := repo.PriceFor(ctx, "midnight-oud", "50ml")
	require.NoError(t, err)
	assert.Equal(t, 195.0, price)

	price, err = repo.PriceFor(ctx, "midnight-oud", "100ml")
	require.NoError(t, err)
	assert.Equal(t, 295.0, price)

	_, err = repo.PriceFor(ctx, "midnight-oud", "200ml")
	assert.ErrorIs(t, err, catalog.ErrUnknownSize)
}

func TestPriceFor_DefaultSizeFallback(t *testing.T) {
	repo := setupTestCatalog(t)
	ctx := context.Background()

	// rose-petale has no explicit size options, only its default 75ml.
	price, err := repo.PriceFor(ctx, "rose-petale", "75ml")
	require.NoError(t, err)
	assert.Equal(t, 245.0, price)

	_, err = repo.PriceFor(ctx, "rose-petale", "30ml")
	assert.ErrorIs(t, err, catalog.ErrUnknownSize)
}
