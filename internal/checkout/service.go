package checkout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/internity/storefront/internal/domain"
	"github.com/internity/storefront/internal/events"
	"github.com/internity/storefront/internal/session"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrUnknownShippingMethod = errors.New("unknown shipping method")
)

// TaxRate is the flat sales tax applied to the cart subtotal.
const TaxRate = 0.08

// DefaultProcessingDelay stands in for the payment round-trip. There is no
// real payment backend; a submit always succeeds after the delay.
const DefaultProcessingDelay = 2 * time.Second

// ShippingMethods are the flat-rate delivery options offered at checkout.
var ShippingMethods = []domain.ShippingMethod{
	{ID: "standard", Name: "Standard Shipping", Time: "5-7 business days", Price: 0},
	{ID: "express", Name: "Express Shipping", Time: "2-3 business days", Price: 15},
	{ID: "overnight", Name: "Overnight Shipping", Time: "Next business day", Price: 35},
}

func shippingMethodByID(id string) (domain.ShippingMethod, bool) {
	for _, m := range ShippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return domain.ShippingMethod{}, false
}

// SubmitRequest is a checkout submission. The idempotency key dedupes
// retries of the same order; shipping method defaults to standard.
type SubmitRequest struct {
	IdempotencyKey   string
	ShippingMethodID string
}

// Service runs the simulated checkout flow: snapshot the cart, hold for the
// processing delay, clear the cart, record the order. Orders live in memory
// only and vanish on restart; there is no order book behind the simulation.
type Service struct {
	mu        sync.Mutex
	orders    map[string][]domain.Order // sessionID -> completed orders
	inFlight  map[string]*domain.Order  // idempotency key -> order
	delay     time.Duration
	publisher events.Publisher
}

func NewService(publisher events.Publisher, delay time.Duration) *Service {
	return &Service{
		orders:    make(map[string][]domain.Order),
		inFlight:  make(map[string]*domain.Order),
		delay:     delay,
		publisher: publisher,
	}
}

// Submit places an order for the session's current cart. Re-submitting the
// same idempotency key returns the recorded order instead of charging twice.
// Once started, processing cannot be cancelled; the caller waits it out.
func (s *Service) Submit(ctx context.Context, sess *session.Session, req SubmitRequest) (domain.Order, error) {
	method, ok := shippingMethodByID(req.ShippingMethodID)
	if req.ShippingMethodID == "" {
		method, _ = shippingMethodByID("standard")
		ok = true
	}
	if !ok {
		return domain.Order{}, ErrUnknownShippingMethod
	}

	key := sess.ID + "/" + req.IdempotencyKey

	s.mu.Lock()
	if req.IdempotencyKey != "" {
		if existing, found := s.inFlight[key]; found {
			order := *existing
			s.mu.Unlock()
			log.Printf("duplicate checkout for session %s key %s, returning %s order %s",
				sess.ID, req.IdempotencyKey, order.Status, order.ID)
			return order, nil
		}
	}

	items := sess.Cart.Items()
	if len(items) == 0 {
		s.mu.Unlock()
		return domain.Order{}, ErrEmptyCart
	}

	order := &domain.Order{
		ID:             uuid.New().String(),
		SessionID:      sess.ID,
		Status:         domain.CheckoutStatusInitiated,
		ShippingMethod: method.ID,
		Snapshot:       snapshotCart(items, method),
	}
	if req.IdempotencyKey != "" {
		s.inFlight[key] = order
	}
	s.mu.Unlock()

	// The order leaves INITIATED when the simulated payment round-trip
	// starts; duplicate submits during the delay observe PROCESSING.
	s.mu.Lock()
	order.Status = domain.CheckoutStatusProcessing
	s.mu.Unlock()

	// Simulated payment processing. Deliberately not selecting on ctx:
	// once a submit starts it runs to completion.
	<-time.After(s.delay)

	// The whole cart is cleared, including lines added while processing
	// ran; the order contains only the snapshot taken at submit time.
	sess.Cart.Clear()

	s.mu.Lock()
	order.Status = domain.CheckoutStatusCompleted
	order.PlacedAt = time.Now()
	completed := *order
	s.orders[sess.ID] = append(s.orders[sess.ID], completed)
	s.mu.Unlock()

	if err := s.publisher.PublishCheckoutCompleted(ctx, completed); err != nil {
		log.Printf("failed to publish checkout event for order %s: %v", completed.ID, err)
	}

	return completed, nil
}

// Orders returns the session's completed orders, newest last.
func (s *Service) Orders(sessionID string) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]domain.Order, len(s.orders[sessionID]))
	copy(orders, s.orders[sessionID])
	return orders
}

func snapshotCart(items []domain.CartLineItem, method domain.ShippingMethod) domain.CartSnapshot {
	snapshot := domain.CartSnapshot{
		Items:      make([]domain.CartSnapshotItem, 0, len(items)),
		Shipping:   method.Price,
		CapturedAt: time.Now(),
	}

	for _, item := range items {
		lineSubtotal := item.Price * float64(item.Quantity)
		snapshot.Items = append(snapshot.Items, domain.CartSnapshotItem{
			ProductID: item.ID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  lineSubtotal,
		})
		snapshot.Subtotal += lineSubtotal
	}

	snapshot.Tax = snapshot.Subtotal * TaxRate
	snapshot.Total = snapshot.Subtotal + snapshot.Shipping + snapshot.Tax
	return snapshot
}
