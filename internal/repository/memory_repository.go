package repository

import (
	"context"
	"sync"

	"github.com/internity/storefront/internal/domain"
)

// MemoryStateRepository keeps persisted state in process memory. Used by
// tests and for local development without Redis or Mongo; state survives
// session eviction but not a restart.
type MemoryStateRepository struct {
	mu        sync.RWMutex
	carts     map[string][]domain.CartLineItem
	wishlists map[string][]domain.WishlistItem
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		carts:     make(map[string][]domain.CartLineItem),
		wishlists: make(map[string][]domain.WishlistItem),
	}
}

func (m *MemoryStateRepository) Carts() CartRepository {
	return memoryCartRepository{m}
}

func (m *MemoryStateRepository) Wishlists() WishlistRepository {
	return memoryWishlistRepository{m}
}

type memoryCartRepository struct {
	state *MemoryStateRepository
}

func (r memoryCartRepository) Load(_ context.Context, sessionID string) ([]domain.CartLineItem, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	items, ok := r.state.carts[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	out := make([]domain.CartLineItem, len(items))
	copy(out, items)
	return out, nil
}

func (r memoryCartRepository) Save(_ context.Context, sessionID string, items []domain.CartLineItem) error {
	stored := make([]domain.CartLineItem, len(items))
	copy(stored, items)
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.carts[sessionID] = stored
	return nil
}

func (r memoryCartRepository) Delete(_ context.Context, sessionID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	delete(r.state.carts, sessionID)
	return nil
}

type memoryWishlistRepository struct {
	state *MemoryStateRepository
}

func (r memoryWishlistRepository) Load(_ context.Context, sessionID string) ([]domain.WishlistItem, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()
	items, ok := r.state.wishlists[sessionID]
	if !ok {
		return nil, ErrStateNotFound
	}
	out := make([]domain.WishlistItem, len(items))
	copy(out, items)
	return out, nil
}

func (r memoryWishlistRepository) Save(_ context.Context, sessionID string, items []domain.WishlistItem) error {
	stored := make([]domain.WishlistItem, len(items))
	copy(stored, items)
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.wishlists[sessionID] = stored
	return nil
}

func (r memoryWishlistRepository) Delete(_ context.Context, sessionID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	delete(r.state.wishlists, sessionID)
	return nil
}
