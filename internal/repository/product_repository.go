package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"jewelshop/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrProductNotFound = errors.New("product not found")

// ListFilter is the conjunctive filter for product listings. Zero values
// mean "no constraint"; is_active = TRUE is always applied.
type ListFilter struct {
	CategorySlug string
	FeaturedOnly bool
	Search       string
	Sort         SortField
	Order        SortOrder
	Limit        int
	Offset       int
}

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	List(ctx context.Context, filter ListFilter) ([]domain.ProductSummary, int, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Images(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error)
	Categories(ctx context.Context, productID uuid.UUID) ([]domain.CategoryRef, error)
	Related(ctx context.Context, productID uuid.UUID, limit int) ([]domain.ProductSummary, error)
	Featured(ctx context.Context, limit int) ([]domain.ProductSummary, error)
}

type productRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

// summaryColumns selects the listing shape. The image and category come from
// scalar subqueries so a product in several categories (or with several
// is_primary rows) still produces exactly one listing row; the primary image
// pick is deterministic: lowest sort_order, then id.
const summaryColumns = `
	p.id, p.slug, p.name, p.short_description, p.price, p.compare_at_price,
	p.material, p.metal_type, p.is_featured, p.inventory_quantity,
	(SELECT pi.url FROM product_images pi
		WHERE pi.product_id = p.id AND pi.is_primary = TRUE
		ORDER BY pi.sort_order, pi.id LIMIT 1) AS primary_image,
	(SELECT pi.alt_text FROM product_images pi
		WHERE pi.product_id = p.id AND pi.is_primary = TRUE
		ORDER BY pi.sort_order, pi.id LIMIT 1) AS alt_text,
	(SELECT c.name FROM categories c
		JOIN product_categories pc ON c.id = pc.category_id
		WHERE pc.product_id = p.id ORDER BY c.sort_order, c.name LIMIT 1) AS category_name,
	(SELECT c.slug FROM categories c
		JOIN product_categories pc ON c.id = pc.category_id
		WHERE pc.product_id = p.id ORDER BY c.sort_order, c.name LIMIT 1) AS category_slug`

// buildFilter assembles the WHERE clause shared by the listing and count
// queries. Category membership goes through an IN subquery so the join table
// never duplicates product rows.
func buildFilter(filter ListFilter) (string, []interface{}) {
	conditions := []string{"p.is_active = TRUE"}
	args := []interface{}{}

	if filter.CategorySlug != "" {
		conditions = append(conditions, `p.id IN (
			SELECT pc.product_id FROM product_categories pc
			JOIN categories c ON pc.category_id = c.id
			WHERE c.slug = ?)`)
		args = append(args, filter.CategorySlug)
	}

	if filter.FeaturedOnly {
		conditions = append(conditions, "p.is_featured = TRUE")
	}

	if filter.Search != "" {
		conditions = append(conditions, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	return strings.Join(conditions, " AND "), args
}

// List retrieves one page of products matching the filter plus the total
// count of matching rows. Ordering carries p.id as a tie-break so paging is
// stable: concatenating all pages yields each matching product exactly once.
func (r *productRepository) List(ctx context.Context, filter ListFilter) ([]domain.ProductSummary, int, error) {
	whereClause, args := buildFilter(filter)

	countQuery := r.db.Rebind(fmt.Sprintf(
		"SELECT COUNT(*) FROM products p WHERE %s", whereClause))

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM products p
		WHERE %s
		ORDER BY %s %s, p.id
		LIMIT ? OFFSET ?`,
		summaryColumns, whereClause, filter.Sort.column(), filter.Order))

	args = append(args, filter.Limit, filter.Offset)

	products := []domain.ProductSummary{}
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// FindBySlug retrieves one active product by slug.
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := r.db.Rebind(`
		SELECT id, slug, name, description, short_description, sku, price,
			compare_at_price, material, metal_type, gemstone, inventory_quantity,
			track_inventory, allow_backorder, is_featured, is_active, created_at, updated_at
		FROM products
		WHERE slug = ? AND is_active = TRUE
	`)

	product := &domain.Product{}
	err := r.db.GetContext(ctx, product, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}

	return product, nil
}

// Images retrieves all gallery images for a product, primary first within
// each sort position.
func (r *productRepository) Images(ctx context.Context, productID uuid.UUID) ([]domain.ProductImage, error) {
	query := r.db.Rebind(`
		SELECT id, product_id, url, alt_text, sort_order, is_primary
		FROM product_images
		WHERE product_id = ?
		ORDER BY sort_order ASC, is_primary DESC
	`)

	images := []domain.ProductImage{}
	if err := r.db.SelectContext(ctx, &images, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}

	return images, nil
}

// Categories retrieves the categories a product belongs to.
func (r *productRepository) Categories(ctx context.Context, productID uuid.UUID) ([]domain.CategoryRef, error) {
	query := r.db.Rebind(`
		SELECT c.id, c.name, c.slug
		FROM categories c
		JOIN product_categories pc ON c.id = pc.category_id
		WHERE pc.product_id = ?
		ORDER BY c.sort_order, c.name
	`)

	categories := []domain.CategoryRef{}
	if err := r.db.SelectContext(ctx, &categories, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list product categories: %w", err)
	}

	return categories, nil
}

// Related retrieves up to limit other active products sharing at least one
// category with the given product, most recently created first.
func (r *productRepository) Related(ctx context.Context, productID uuid.UUID, limit int) ([]domain.ProductSummary, error) {
	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM products p
		WHERE p.is_active = TRUE
			AND p.id <> ?
			AND p.id IN (
				SELECT pc.product_id FROM product_categories pc
				WHERE pc.category_id IN (
					SELECT category_id FROM product_categories WHERE product_id = ?))
		ORDER BY p.created_at DESC, p.id
		LIMIT ?`, summaryColumns))

	products := []domain.ProductSummary{}
	if err := r.db.SelectContext(ctx, &products, query, productID, productID, limit); err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}

	return products, nil
}

// Featured retrieves active featured products, most recently updated first.
func (r *productRepository) Featured(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	query := r.db.Rebind(fmt.Sprintf(`
		SELECT %s
		FROM products p
		WHERE p.is_featured = TRUE AND p.is_active = TRUE
		ORDER BY p.updated_at DESC, p.id
		LIMIT ?`, summaryColumns))

	products := []domain.ProductSummary{}
	if err := r.db.SelectContext(ctx, &products, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}

	return products, nil
}
