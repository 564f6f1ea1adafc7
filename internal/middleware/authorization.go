package middleware

import (
	"context"
	"net/http"

	"jewelshop/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleLookup resolves the caller's current role. The token only carries the
// user id, so role checks always see the stored role, not a stale claim.
type RoleLookup interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// RequireAdmin middleware ensures the authenticated user has the admin role
func RequireAdmin(users RoleLookup, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr, ok := GetUserID(r.Context())
			if !ok {
				logger.Warn("User ID not found in context")
				RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			user, err := users.GetProfile(r.Context(), userID)
			if err != nil {
				logger.Warn("Failed to resolve user for role check", zap.Error(err))
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if user.Role != domain.RoleAdmin {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("user_id", userIDStr),
					zap.String("role", user.Role),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
