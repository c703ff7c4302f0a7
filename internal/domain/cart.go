package domain

// CartLineItem is one purchasable line in the cart. Together with Size the
// product ID forms the line identity: same (ID, Size) merges, different sizes
// stay distinct lines. Name, Price and Image are captured from the catalog at
// add time and never re-fetched afterwards.
type CartLineItem struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	Price    float64 `json:"price" bson:"price"`
	Image    string  `json:"image" bson:"image"`
	Size     string  `json:"size" bson:"size"`
	Quantity int     `json:"quantity" bson:"quantity"`
}

// Cart is the aggregate of line items plus the drawer visibility flag.
// IsOpen is transient UI state and is never persisted.
type Cart struct {
	Items  []CartLineItem `json:"items"`
	IsOpen bool           `json:"is_open"`
}

// TotalItems sums all line quantities. Always recomputed from Items so it
// cannot drift from the line collection.
func (c Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price x quantity over all lines.
func (c Cart) TotalPrice() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
