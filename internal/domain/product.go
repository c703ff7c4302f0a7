package domain

// FragranceNotes describes the scent pyramid shown on product pages.
// Display-only metadata, no behavior attached.
type FragranceNotes struct {
	Top    []string `json:"top" bson:"top"`
	Middle []string `json:"middle" bson:"middle"`
	Base   []string `json:"base" bson:"base"`
}

// SizeOption is a purchasable bottle size with its own price.
type SizeOption struct {
	Size  string  `json:"size" bson:"size"`
	Price float64 `json:"price" bson:"price"`
}

// Product is a read-only catalog entry. The cart never holds a reference
// back to a Product; display fields are copied into line items at add time.
type Product struct {
	ID          string         `json:"id" bson:"_id"`
	Name        string         `json:"name" bson:"name"`
	Price       float64        `json:"price" bson:"price"`
	Image       string         `json:"image" bson:"image"`
	Category    string         `json:"category,omitempty" bson:"category,omitempty"`
	Size        string         `json:"size,omitempty" bson:"size,omitempty"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Notes       FragranceNotes `json:"notes,omitempty" bson:"notes,omitempty"`
	Sizes       []SizeOption   `json:"sizes,omitempty" bson:"sizes,omitempty"`
}
