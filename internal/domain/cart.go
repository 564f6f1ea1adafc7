package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (user, product) row. The pair is unique; adding the same
// product again merges quantities instead of creating a second row.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// CartLine is a cart item joined to its active product for display.
type CartLine struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Quantity          int       `json:"quantity" db:"quantity"`
	AddedAt           time.Time `json:"added_at" db:"added_at"`
	ProductID         uuid.UUID `json:"product_id" db:"product_id"`
	ProductName       string    `json:"product_name" db:"product_name"`
	ProductSlug       string    `json:"product_slug" db:"product_slug"`
	Price             float64   `json:"price" db:"price"`
	SKU               string    `json:"sku" db:"sku"`
	InventoryQuantity int       `json:"inventory_quantity" db:"inventory_quantity"`
	TrackInventory    bool      `json:"track_inventory" db:"track_inventory"`
	ImageURL          *string   `json:"image_url" db:"image_url"`
	AltText           *string   `json:"alt_text" db:"alt_text"`
}

// Cart is the reconciled view returned to the caller. Tax and shipping are
// fixed at zero until checkout exists.
type Cart struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Shipping float64    `json:"shipping"`
	Total    float64    `json:"total"`
}
