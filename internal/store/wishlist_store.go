package store

import (
	"sync"

	"github.com/internity/storefront/internal/domain"
)

// WishlistChangeListener receives an items snapshot after every mutation.
type WishlistChangeListener func(items []domain.WishlistItem)

// WishlistStore tracks a session's saved-for-later products. Pure set
// membership keyed by product id plus display metadata; no quantities,
// no price aggregation.
type WishlistStore struct {
	mu        sync.RWMutex
	items     []domain.WishlistItem
	listeners []WishlistChangeListener
}

func NewWishlistStore() *WishlistStore {
	return &WishlistStore{}
}

// NewWishlistStoreFrom creates a store rehydrated from persisted items.
func NewWishlistStoreFrom(items []domain.WishlistItem) *WishlistStore {
	s := &WishlistStore{}
	s.items = append(s.items, items...)
	return s
}

func (s *WishlistStore) Subscribe(fn WishlistChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddItem appends the item unless one with the same id already exists, in
// which case the call is a no-op rather than an error.
func (s *WishlistStore) AddItem(item domain.WishlistItem) {
	s.mu.Lock()
	for _, existing := range s.items {
		if existing.ID == item.ID {
			s.mu.Unlock()
			return
		}
	}
	s.items = append(s.items, item)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// RemoveItem drops the entry with the matching id; no-op if absent.
func (s *WishlistStore) RemoveItem(id string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *WishlistStore) IsInWishlist(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (s *WishlistStore) Clear() {
	s.mu.Lock()
	s.items = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *WishlistStore) Items() []domain.WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *WishlistStore) snapshotLocked() []domain.WishlistItem {
	snapshot := make([]domain.WishlistItem, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *WishlistStore) notify(snapshot []domain.WishlistItem) {
	s.mu.RLock()
	listeners := make([]WishlistChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
