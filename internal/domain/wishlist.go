package domain

// WishlistItem is a saved-for-later product. At most one entry per product ID.
type WishlistItem struct {
	ID    string  `json:"id" bson:"id"`
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
	Image string  `json:"image" bson:"image"`
}

// Wishlist is set-like on item ID, with insertion order preserved.
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}
