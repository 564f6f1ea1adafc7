package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is the full catalog record returned on the detail page.
type Product struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Slug              string    `json:"slug" db:"slug"`
	Name              string    `json:"name" db:"name"`
	Description       string    `json:"description" db:"description"`
	ShortDescription  string    `json:"short_description" db:"short_description"`
	SKU               string    `json:"sku" db:"sku"`
	Price             float64   `json:"price" db:"price"`
	CompareAtPrice    *float64  `json:"compare_at_price" db:"compare_at_price"`
	Material          string    `json:"material" db:"material"`
	MetalType         string    `json:"metal_type" db:"metal_type"`
	Gemstone          string    `json:"gemstone" db:"gemstone"`
	InventoryQuantity int       `json:"inventory_quantity" db:"inventory_quantity"`
	TrackInventory    bool      `json:"track_inventory" db:"track_inventory"`
	AllowBackorder    bool      `json:"allow_backorder" db:"allow_backorder"`
	IsFeatured        bool      `json:"is_featured" db:"is_featured"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ProductSummary is the compact row used by listings. The image and category
// columns come from LEFT JOINs and may be absent.
type ProductSummary struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Slug              string    `json:"slug" db:"slug"`
	Name              string    `json:"name" db:"name"`
	ShortDescription  string    `json:"short_description" db:"short_description"`
	Price             float64   `json:"price" db:"price"`
	CompareAtPrice    *float64  `json:"compare_at_price" db:"compare_at_price"`
	Material          string    `json:"material" db:"material"`
	MetalType         string    `json:"metal_type" db:"metal_type"`
	IsFeatured        bool      `json:"is_featured" db:"is_featured"`
	InventoryQuantity int       `json:"inventory_quantity" db:"inventory_quantity"`
	PrimaryImage      *string   `json:"primary_image" db:"primary_image"`
	AltText           *string   `json:"alt_text" db:"alt_text"`
	CategoryName      *string   `json:"category_name,omitempty" db:"category_name"`
	CategorySlug      *string   `json:"category_slug,omitempty" db:"category_slug"`
}

// Category represents a product collection
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	IsActive    bool      `json:"is_active" db:"is_active"`
}

// CategoryWithCount carries the number of active products in the category.
type CategoryWithCount struct {
	Category
	ProductCount int `json:"product_count" db:"product_count"`
}

// ProductImage is one gallery entry for a product. Several images may claim
// is_primary; selection is deterministic (sort_order, then id) rather than
// enforced unique.
type ProductImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	URL       string    `json:"url" db:"url"`
	AltText   string    `json:"alt_text" db:"alt_text"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
}

// CategoryRef is the slim shape embedded in product detail payloads.
type CategoryRef struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}
