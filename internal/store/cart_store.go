package store

import (
	"errors"
	"sync"

	"github.com/internity/storefront/internal/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// ChangeListener receives an items snapshot after every mutation. Listeners
// are invoked synchronously on the mutating goroutine, outside the store lock.
type ChangeListener func(items []domain.CartLineItem)

// CartStore is the single source of truth for one session's shopping cart.
// State transitions are pure in-memory operations; persistence is attached
// as a change listener so the transition logic stays testable in isolation.
type CartStore struct {
	mu        sync.RWMutex
	items     []domain.CartLineItem
	isOpen    bool
	listeners []ChangeListener
}

func NewCartStore() *CartStore {
	return &CartStore{}
}

// NewCartStoreFrom creates a store rehydrated from previously persisted items.
func NewCartStoreFrom(items []domain.CartLineItem) *CartStore {
	s := &CartStore{}
	s.items = append(s.items, items...)
	return s
}

// Subscribe registers a listener for item changes. Drawer visibility changes
// do not notify; IsOpen is transient UI state and is never persisted.
func (s *CartStore) Subscribe(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddItem merges by the (id, size) composite key: an existing line gets the
// incoming quantity added to it, all other fields of the existing line are
// left untouched. A new (id, size) pair is appended, preserving insertion
// order. Quantities below 1 are rejected.
func (s *CartStore) AddItem(item domain.CartLineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == item.ID && s.items[i].Size == item.Size {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// RemoveItem removes every line whose product id matches, regardless of size.
// Callers rely on this to drop a product entirely; size-scoped removal is
// deliberately not offered.
func (s *CartStore) RemoveItem(id string) {
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

// UpdateQuantity sets the quantity of every line with the given product id to
// the exact value. A quantity of zero or less removes the product entirely; a
// line never survives at quantity zero.
func (s *CartStore) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(id)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
		}
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear empties the cart. The drawer visibility flag is untouched.
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.items = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *CartStore) Open() {
	s.mu.Lock()
	s.isOpen = true
	s.mu.Unlock()
}

func (s *CartStore) Close() {
	s.mu.Lock()
	s.isOpen = false
	s.mu.Unlock()
}

func (s *CartStore) Toggle() {
	s.mu.Lock()
	s.isOpen = !s.isOpen
	s.mu.Unlock()
}

func (s *CartStore) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOpen
}

// Items returns a defensive copy of the current line items.
func (s *CartStore) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// TotalItems sums all line quantities; 0 for an empty cart.
func (s *CartStore) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Cart{Items: s.items}.TotalItems()
}

// TotalPrice sums price x quantity over all lines; 0 for an empty cart.
func (s *CartStore) TotalPrice() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Cart{Items: s.items}.TotalPrice()
}

// Snapshot returns the cart aggregate as one consistent read.
func (s *CartStore) Snapshot() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Cart{Items: s.snapshotLocked(), IsOpen: s.isOpen}
}

func (s *CartStore) snapshotLocked() []domain.CartLineItem {
	snapshot := make([]domain.CartLineItem, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *CartStore) notify(snapshot []domain.CartLineItem) {
	s.mu.RLock()
	listeners := make([]ChangeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}
