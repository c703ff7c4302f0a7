package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/internity/storefront/internal/domain"
	"github.com/internity/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *repository.MemoryStateRepository) {
	state := repository.NewMemoryStateRepository()
	m := NewManager(state.Carts(), state.Wishlists())
	t.Cleanup(m.Close)
	return m, state
}

func TestGet_NewSessionStartsEmpty(t *testing.T) {
	sut, _ := newTestManager(t)

	s, err := sut.Get(context.Background(), "session-1")
	require.NoError(t, err)

	assert.Equal(t, "session-1", s.ID)
	assert.Empty(t, s.Cart.Items())
	assert.Empty(t, s.Wishlist.Items())
}

func TestGet_SameIDReturnsSameStores(t *testing.T) {
	sut, _ := newTestManager(t)
	ctx := context.Background()

	first, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)
	second, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first.Cart, second.Cart)
}

func TestMutations_ArePersistedThroughSubscription(t *testing.T) {
	sut, state := newTestManager(t)
	ctx := context.Background()

	s, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)

	require.NoError(t, s.Cart.AddItem(domain.CartLineItem{
		ID: "midnight-oud", Name: "Midnight Oud", Price: 295, Size: "100ml", Quantity: 2,
	}))
	s.Wishlist.AddItem(domain.WishlistItem{ID: "velvet-noir", Name: "Velvet Noir", Price: 345})

	// Listeners run synchronously, so durable state is current already.
	cartItems, err := state.Carts().Load(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, cartItems, 1)
	assert.Equal(t, 2, cartItems[0].Quantity)

	wishItems, err := state.Wishlists().Load(ctx, "session-1")
	require.NoError(t, err)
	assert.Len(t, wishItems, 1)
}

func TestRehydration_RoundTripsPersistedState(t *testing.T) {
	state := repository.NewMemoryStateRepository()
	ctx := context.Background()

	first := NewManager(state.Carts(), state.Wishlists())
	s, err := first.Get(ctx, "session-1")
	require.NoError(t, err)
	require.NoError(t, s.Cart.AddItem(domain.CartLineItem{ID: "midnight-oud", Size: "100ml", Quantity: 3, Price: 295}))
	wantItems := s.Cart.Items()
	first.Close()

	// A fresh manager simulates a process restart over the same backend.
	second := NewManager(state.Carts(), state.Wishlists())
	defer second.Close()

	restored, err := second.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, wantItems, restored.Cart.Items())
	assert.Equal(t, 3, restored.Cart.TotalItems())
	assert.Equal(t, 885.0, restored.Cart.TotalPrice())
}

func TestClear_DeletesDurableRecord(t *testing.T) {
	sut, state := newTestManager(t)
	ctx := context.Background()

	s, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)
	require.NoError(t, s.Cart.AddItem(domain.CartLineItem{ID: "midnight-oud", Size: "100ml", Quantity: 1, Price: 295}))
	s.Wishlist.AddItem(domain.WishlistItem{ID: "velvet-noir", Price: 345})

	_, err = state.Carts().Load(ctx, "session-1")
	require.NoError(t, err)

	// Emptying a store drops its record rather than persisting an empty blob.
	s.Cart.Clear()
	_, err = state.Carts().Load(ctx, "session-1")
	assert.ErrorIs(t, err, repository.ErrStateNotFound)

	s.Wishlist.RemoveItem("velvet-noir")
	_, err = state.Wishlists().Load(ctx, "session-1")
	assert.ErrorIs(t, err, repository.ErrStateNotFound)
}

func TestGet_RehydrationOutlivesRequestContext(t *testing.T) {
	state := repository.NewMemoryStateRepository()
	carts := seededCartRepository{items: []domain.CartLineItem{
		{ID: "midnight-oud", Size: "100ml", Quantity: 2, Price: 295},
	}}

	sut := NewManager(carts, state.Wishlists())
	defer sut.Close()

	// The client is already gone by the time the session is first touched.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Cart.TotalItems())
}

func TestRehydration_LoadFailureDegradesToEmpty(t *testing.T) {
	state := repository.NewMemoryStateRepository()
	failing := failingCartRepository{err: fmt.Errorf("backend down")}

	sut := NewManager(failing, state.Wishlists())
	defer sut.Close()

	s, err := sut.Get(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Empty(t, s.Cart.Items())

	// The store keeps working in memory even though saves fail too.
	require.NoError(t, s.Cart.AddItem(domain.CartLineItem{ID: "ocean-mist", Size: "100ml", Quantity: 1, Price: 175}))
	assert.Equal(t, 1, s.Cart.TotalItems())
}

func TestGet_ConcurrentRequestsShareOneSession(t *testing.T) {
	sut, _ := newTestManager(t)
	ctx := context.Background()

	const workers = 16
	sessions := make([]*Session, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := sut.Get(ctx, "session-1")
			assert.NoError(t, err)
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, sessions[0], sessions[i])
	}
}

func TestEvictIdle_DropsStaleSessionsOnly(t *testing.T) {
	sut, _ := newTestManager(t)
	ctx := context.Background()

	s, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)
	require.NoError(t, s.Cart.AddItem(domain.CartLineItem{ID: "midnight-oud", Size: "100ml", Quantity: 1, Price: 295}))

	// Force the session past the idle cutoff.
	sut.mu.Lock()
	sut.sessions["session-1"].lastSeen = sut.sessions["session-1"].lastSeen.Add(-2 * sut.idleTTL)
	sut.mu.Unlock()

	sut.evictIdle()

	sut.mu.RLock()
	_, live := sut.sessions["session-1"]
	sut.mu.RUnlock()
	assert.False(t, live)

	// Durable state survives eviction and rehydrates.
	restored, err := sut.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Cart.TotalItems())
}

// seededCartRepository serves fixed items but honors context cancellation,
// the way a real backend would.
type seededCartRepository struct {
	items []domain.CartLineItem
}

func (r seededCartRepository) Load(ctx context.Context, _ string) ([]domain.CartLineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.items, nil
}

func (r seededCartRepository) Save(context.Context, string, []domain.CartLineItem) error {
	return nil
}

func (r seededCartRepository) Delete(context.Context, string) error {
	return nil
}

type failingCartRepository struct {
	err error
}

func (f failingCartRepository) Load(context.Context, string) ([]domain.CartLineItem, error) {
	return nil, f.err
}

func (f failingCartRepository) Save(context.Context, string, []domain.CartLineItem) error {
	return f.err
}

func (f failingCartRepository) Delete(context.Context, string) error {
	return f.err
}
