package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jewelshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	ListWithCounts(ctx context.Context) ([]domain.CategoryWithCount, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// ListWithCounts retrieves active categories with their active-product
// counts, ordered by explicit sort order then name.
func (r *categoryRepository) ListWithCounts(ctx context.Context) ([]domain.CategoryWithCount, error) {
	query := `
		SELECT c.id, c.slug, c.name, c.description, c.image_url, c.sort_order, c.is_active,
			(SELECT COUNT(*)
				FROM product_categories pc
				JOIN products p ON pc.product_id = p.id AND p.is_active = TRUE
				WHERE pc.category_id = c.id) AS product_count
		FROM categories c
		WHERE c.is_active = TRUE
		ORDER BY c.sort_order ASC, c.name ASC
	`

	categories := []domain.CategoryWithCount{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// FindBySlug retrieves one active category by slug.
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := r.db.Rebind(`
		SELECT id, slug, name, description, image_url, sort_order, is_active
		FROM categories
		WHERE slug = ? AND is_active = TRUE
	`)

	category := &domain.Category{}
	err := r.db.GetContext(ctx, category, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}

	return category, nil
}
