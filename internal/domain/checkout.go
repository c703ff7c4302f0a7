package domain

import "time"

type CheckoutStatus string

// An order moves INITIATED -> PROCESSING -> COMPLETED. The simulated payment
// never declines, so there is no failure state.
const (
	CheckoutStatusInitiated  CheckoutStatus = "INITIATED"
	CheckoutStatusProcessing CheckoutStatus = "PROCESSING"
	CheckoutStatusCompleted  CheckoutStatus = "COMPLETED"
)

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// ShippingMethod is one of the flat-rate delivery options offered at checkout.
type ShippingMethod struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

type CartSnapshotItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CartSnapshot captures the full cart state at the moment checkout starts,
// so later cart mutations cannot change what the order was placed for.
type CartSnapshot struct {
	Items      []CartSnapshotItem `json:"items"`
	Subtotal   float64            `json:"subtotal"`
	Shipping   float64            `json:"shipping"`
	Tax        float64            `json:"tax"`
	Total      float64            `json:"total"`
	CapturedAt time.Time          `json:"captured_at"`
}

// Order is a completed checkout for one session. Orders live in memory only;
// there is no server-side order book behind the simulated flow.
type Order struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"-"`
	Status         CheckoutStatus `json:"status"`
	ShippingMethod string         `json:"shipping_method"`
	Snapshot       CartSnapshot   `json:"snapshot"`
	PlacedAt       time.Time      `json:"placed_at"`
}
