package service

import (
	"context"
	"fmt"

	"jewelshop/internal/domain"
	"jewelshop/internal/repository"
)

const (
	// DefaultPageSize matches the storefront grid.
	DefaultPageSize = 12
	// MaxPageSize caps caller-supplied limits so a single request cannot
	// sweep the whole catalog.
	MaxPageSize = 100

	DefaultFeaturedLimit = 4
	relatedLimit         = 4
)

// ProductListQuery is the raw listing input as it arrives from the caller.
// Sort and Order are free-form here; unrecognized values fall back to
// created_at/desc rather than erroring.
type ProductListQuery struct {
	Page         int
	Limit        int
	CategorySlug string
	FeaturedOnly bool
	Search       string
	Sort         string
	Order        string
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage   int  `json:"current_page"`
	TotalPages    int  `json:"total_pages"`
	TotalProducts int  `json:"total_products"`
	PerPage       int  `json:"per_page"`
	HasNext       bool `json:"has_next"`
	HasPrev       bool `json:"has_prev"`
}

// ProductPage is one page of the filtered catalog.
type ProductPage struct {
	Products   []domain.ProductSummary `json:"products"`
	Pagination Pagination              `json:"pagination"`
}

// ProductDetail is the full product payload for the detail page.
type ProductDetail struct {
	domain.Product
	Images          []domain.ProductImage   `json:"images"`
	Categories      []domain.CategoryRef    `json:"categories"`
	RelatedProducts []domain.ProductSummary `json:"related_products"`
}

// CategoryPage is a category plus one page of its products.
type CategoryPage struct {
	Category   domain.Category         `json:"category"`
	Products   []domain.ProductSummary `json:"products"`
	Pagination Pagination              `json:"pagination"`
}

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListProducts(ctx context.Context, query ProductListQuery) (*ProductPage, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	FeaturedProducts(ctx context.Context, limit int) ([]domain.ProductSummary, error)
	ListCategories(ctx context.Context) ([]domain.CategoryWithCount, error)
	GetCategoryBySlug(ctx context.Context, slug string, query ProductListQuery) (*CategoryPage, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// normalize clamps page and limit to sane bounds.
func normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// buildPagination derives page metadata; total pages is ceiling division.
func buildPagination(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit
	return Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
		PerPage:       limit,
		HasNext:       page < totalPages,
		HasPrev:       page > 1,
	}
}

// ListProducts returns one page of the filtered, sorted catalog.
func (s *catalogService) ListProducts(ctx context.Context, query ProductListQuery) (*ProductPage, error) {
	page, limit := normalize(query.Page, query.Limit)

	filter := repository.ListFilter{
		CategorySlug: query.CategorySlug,
		FeaturedOnly: query.FeaturedOnly,
		Search:       query.Search,
		Sort:         repository.ParseSortField(query.Sort),
		Order:        repository.ParseSortOrder(query.Order),
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductPage{
		Products:   products,
		Pagination: buildPagination(page, limit, total),
	}, nil
}

// GetProductBySlug returns the product with its images, categories and up
// to four related products sharing a category.
func (s *catalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	images, err := s.productRepo.Images(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}

	categories, err := s.productRepo.Categories(ctx, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product categories: %w", err)
	}

	related, err := s.productRepo.Related(ctx, product.ID, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related products: %w", err)
	}

	return &ProductDetail{
		Product:         *product,
		Images:          images,
		Categories:      categories,
		RelatedProducts: related,
	}, nil
}

// FeaturedProducts returns active featured products, most recently updated
// first.
func (s *catalogService) FeaturedProducts(ctx context.Context, limit int) ([]domain.ProductSummary, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return s.productRepo.Featured(ctx, limit)
}

// ListCategories returns active categories with active-product counts.
func (s *catalogService) ListCategories(ctx context.Context) ([]domain.CategoryWithCount, error) {
	return s.categoryRepo.ListWithCounts(ctx)
}

// GetCategoryBySlug returns the category and one page of its products with
// the same sort and pagination semantics as the main listing.
func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string, query ProductListQuery) (*CategoryPage, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	page, limit := normalize(query.Page, query.Limit)

	filter := repository.ListFilter{
		CategorySlug: category.Slug,
		Sort:         repository.ParseSortField(query.Sort),
		Order:        repository.ParseSortOrder(query.Order),
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list category products: %w", err)
	}

	return &CategoryPage{
		Category:   *category,
		Products:   products,
		Pagination: buildPagination(page, limit, total),
	}, nil
}
