package transport

import (
	"errors"
	"net/http"
	"time"

	"jewelshop/internal/domain"
	"jewelshop/internal/middleware"
	"jewelshop/internal/repository"
	"jewelshop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload. An omitted
// quantity means one unit.
type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  *int   `json:"quantity" validate:"omitempty,min=1,max=10"`
}

// UpdateCartItemRequest represents the quantity update payload. Quantity
// zero removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=10"`
}

// CartItemPayload represents one cart line in mutation responses
type CartItemPayload struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

func toCartItemPayload(item *domain.CartItem) CartItemPayload {
	return CartItemPayload{
		ID:        item.ID.String(),
		ProductID: item.ProductID.String(),
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
}

// CartHandler handles HTTP requests for cart operations
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes. Reading the cart tolerates
// anonymous callers; every mutation requires authentication.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware, optionalAuthMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuthMiddleware)
			r.Get("/", h.GetCart)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/add", h.AddItem)
			r.Put("/{itemId}", h.UpdateItem)
			r.Delete("/{itemId}", h.RemoveItem)
			r.Delete("/", h.ClearCart)
		})
	})
}

// GetCart returns the caller's cart, or an empty cart for anonymous callers.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.RespondWithJSON(w, http.StatusOK, domain.Cart{Items: []domain.CartLine{}})
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem adds a product to the cart, merging with any existing line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithValidationError(w, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.cartService.AddItem(r.Context(), userID, productID, quantity)
	if err != nil {
		h.respondCartError(w, err, "Failed to add item to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"message":  "Item added to cart",
		"cartItem": toCartItemPayload(item),
	})
}

// UpdateItem overwrites a cart line's quantity; zero removes it.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithValidationError(w, err)
		return
	}

	item, removed, err := h.cartService.UpdateItem(r.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "Failed to update cart item")
		return
	}

	if removed {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":  "Cart item updated",
		"cartItem": toCartItemPayload(item),
	})
}

// RemoveItem deletes one line from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	if err := h.cartService.RemoveItem(r.Context(), userID, itemID); err != nil {
		h.respondCartError(w, err, "Failed to remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

// ClearCart removes every line from the caller's cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(r)
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.cartService.ClearCart(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

// respondCartError maps cart service errors onto the wire format.
func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, fallback string) {
	var invErr *service.InsufficientInventoryError
	switch {
	case errors.As(err, &invErr):
		message := "Insufficient inventory"
		if invErr.CurrentInCart > 0 {
			message = "Insufficient inventory for requested total quantity"
		}
		middleware.RespondWithInventoryError(w, message, invErr.Available, invErr.CurrentInCart)
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, repository.ErrCartItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, service.ErrQuantityOutOfRange):
		middleware.RespondWithError(w, http.StatusBadRequest, "Quantity must be between 0 and 10")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
