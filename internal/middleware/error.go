package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the wire envelope for every failure: a single error
// string, plus inventory context on stock shortfalls.
type ErrorResponse struct {
	Error         string `json:"error"`
	Available     *int   `json:"available,omitempty"`
	CurrentInCart *int   `json:"currentInCart,omitempty"`
}

// RespondWithError sends the error envelope with the given status code.
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

// RespondWithInventoryError sends the envelope with available stock and,
// when merging into an existing line, the quantity already in the cart.
func RespondWithInventoryError(w http.ResponseWriter, message string, available, currentInCart int) {
	response := ErrorResponse{
		Error:     message,
		Available: &available,
	}
	if currentInCart > 0 {
		response.CurrentInCart = &currentInCart
	}
	RespondWithJSON(w, http.StatusBadRequest, response)
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// NotFoundHandler answers unrouted paths with the standard envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, http.StatusNotFound, "Route not found")
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors.
// Persistence failures surface here only as already-logged 500s; the raw
// detail never reaches the client.
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
