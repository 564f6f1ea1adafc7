package transport

import (
	"errors"
	"net/http"
	"strconv"

	"jewelshop/internal/middleware"
	"jewelshop/internal/repository"
	"jewelshop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for products and categories
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured/list", h.FeaturedProducts)
		r.Get("/{slug}", h.GetProduct)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/{slug}", h.GetCategory)
	})
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed. The service layer substitutes its own defaults for 0.
func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// ListProducts handles paginated, filtered product listings.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.catalogService.ListProducts(r.Context(), service.ProductListQuery{
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
		CategorySlug: q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true",
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
		Order:        q.Get("order"),
	})
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// GetProduct returns the full detail for a single product by slug.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	detail, err := h.catalogService.GetProductBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"product": detail})
}

// FeaturedProducts returns the most recently updated featured products.
func (h *CatalogHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.FeaturedProducts(r.Context(), queryInt(r, "limit"))
	if err != nil {
		h.logger.Error("Failed to list featured products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch featured products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"products": products})
}

// ListCategories returns all active categories with product counts.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetCategory returns a category together with its first page of products.
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.catalogService.GetCategoryBySlug(r.Context(), slug, service.ProductListQuery{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
		Sort:  r.URL.Query().Get("sort"),
		Order: r.URL.Query().Get("order"),
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("Failed to get category", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}
