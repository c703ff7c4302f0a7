package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/internity/storefront/internal/domain"
	"github.com/internity/storefront/internal/repository"
	"github.com/internity/storefront/internal/store"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTTL is how long a session's in-memory stores are kept
	// after the last request before eviction. Durable state outlives
	// eviction and is rehydrated on the next visit.
	DefaultIdleTTL = 30 * time.Minute

	// CleanupInterval is how often the background eviction runs
	CleanupInterval = time.Minute

	saveTimeout = 2 * time.Second
	loadTimeout = 2 * time.Second
)

// Session binds one browsing client to its cart and wishlist stores.
type Session struct {
	ID       string
	Cart     *store.CartStore
	Wishlist *store.WishlistStore
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager owns the live sessions. Each session's stores are created once,
// rehydrated from the repositories, and shared by every request carrying the
// session cookie. Persistence is attached as store subscribers: the stores
// themselves never touch I/O.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	carts     repository.CartRepository
	wishlists repository.WishlistRepository

	group   singleflight.Group // one rehydration per session, however many concurrent requests
	breaker *gobreaker.CircuitBreaker[any]

	idleTTL     time.Duration
	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(carts repository.CartRepository, wishlists repository.WishlistRepository) *Manager {
	m := &Manager{
		sessions:    make(map[string]*entry),
		carts:       carts,
		wishlists:   wishlists,
		idleTTL:     DefaultIdleTTL,
		stopCleanup: make(chan struct{}),
	}

	m.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "state-persistence",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("%s breaker %s -> %s", name, from, to)
		},
	})

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Get returns the live session, rehydrating it from durable state on first
// touch. Concurrent requests for the same session rehydrate once.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = time.Now()
		s := e.session
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do(id, func() (interface{}, error) {
		// Re-check: another request may have won the flight earlier.
		m.mu.RLock()
		if e, ok := m.sessions[id]; ok {
			m.mu.RUnlock()
			return e.session, nil
		}
		m.mu.RUnlock()

		s := m.rehydrate(id)

		m.mu.Lock()
		m.sessions[id] = &entry{session: s, lastSeen: time.Now()}
		m.mu.Unlock()

		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// rehydrate builds the session's stores from persisted state. Loads run on
// their own deadline rather than the triggering request's context, so a
// client disconnect mid-rehydration cannot turn a populated durable record
// into an empty session. Any load failure degrades to an empty store: the
// client keeps working in memory and the next successful save overwrites
// the durable record.
func (m *Manager) rehydrate(id string) *Session {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	cartItems, err := m.carts.Load(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		log.Printf("cart rehydration failed for session %s, starting empty: %v", id, err)
		cartItems = nil
	}

	wishlistItems, err := m.wishlists.Load(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrStateNotFound) {
		log.Printf("wishlist rehydration failed for session %s, starting empty: %v", id, err)
		wishlistItems = nil
	}

	s := &Session{
		ID:       id,
		Cart:     store.NewCartStoreFrom(cartItems),
		Wishlist: store.NewWishlistStoreFrom(wishlistItems),
	}

	s.Cart.Subscribe(func(items []domain.CartLineItem) {
		m.saveCart(id, items)
	})
	s.Wishlist.Subscribe(func(items []domain.WishlistItem) {
		m.saveWishlist(id, items)
	})

	return s
}

// saveCart writes the full item list on every change notification; an
// emptied cart drops its durable record instead of storing an empty blob,
// rehydration treats missing and empty alike. Failures are logged and
// swallowed: in-memory state stays authoritative, and the breaker keeps a
// dead backend from being hammered on every mutation.
func (m *Manager) saveCart(id string, items []domain.CartLineItem) {
	_, err := m.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if len(items) == 0 {
			return nil, m.carts.Delete(ctx, id)
		}
		return nil, m.carts.Save(ctx, id, items)
	})
	if err != nil {
		log.Printf("cart save failed for session %s: %v", id, err)
	}
}

func (m *Manager) saveWishlist(id string, items []domain.WishlistItem) {
	_, err := m.breaker.Execute(func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if len(items) == 0 {
			return nil, m.wishlists.Delete(ctx, id)
		}
		return nil, m.wishlists.Save(ctx, id, items)
	})
	if err != nil {
		log.Printf("wishlist save failed for session %s: %v", id, err)
	}
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// Close stops the eviction loop. Live sessions are dropped; their durable
// state remains.
func (m *Manager) Close() {
	close(m.stopCleanup)
	m.wg.Wait()
}
