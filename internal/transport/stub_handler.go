package transport

import (
	"net/http"

	"jewelshop/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// StubHandler serves the routes that exist in the public API surface but
// are not yet functional: orders, address book, wishlist, admin management
// and payment. Each returns a fixed payload.
type StubHandler struct{}

// NewStubHandler creates a new StubHandler
func NewStubHandler() *StubHandler {
	return &StubHandler{}
}

// RegisterRoutes registers all placeholder routes
func (h *StubHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", emptyList("orders"))
		r.Post("/", comingSoon("Order creation coming soon"))
		r.Get("/{orderId}", comingSoon("Order details coming soon"))
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/addresses", emptyList("addresses"))
		r.Post("/addresses", comingSoon("Address management coming soon"))
		r.Get("/wishlist", emptyList("wishlist"))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)
		r.Get("/dashboard", comingSoon("Admin dashboard coming soon"))
		r.Get("/products", comingSoon("Admin product management coming soon"))
		r.Post("/products", comingSoon("Product creation coming soon"))
		r.Get("/orders", comingSoon("Admin order management coming soon"))
	})

	r.Route("/api/payment", func(r chi.Router) {
		r.With(authMiddleware).Post("/create-intent", comingSoon("Payment integration coming soon"))
		r.Post("/webhook", func(w http.ResponseWriter, _ *http.Request) {
			middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"received": true})
		})
	})
}

func comingSoon(message string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": message})
	}
}

func emptyList(key string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		middleware.RespondWithJSON(w, http.StatusOK, map[string][]any{key: {}})
	}
}
