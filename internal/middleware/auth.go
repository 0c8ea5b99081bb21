package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/auth"
	"github.com/tapcraft/crafting-service/pkg/jwt"
	"github.com/tapcraft/crafting-service/pkg/logger"
)

// Auth validates the Bearer token and places the resolved PlayerContext into
// the request context. Everything behind this middleware can assume an
// authenticated caller.
func Auth(validator *jwt.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(r.Context(), tokenString)
			if err != nil {
				logger.Debug("Token validation failed",
					zap.String("error", err.Error()),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			playerID, err := uuid.Parse(claims.Subject)
			if err != nil {
				logger.Debug("Token subject is not a player id",
					zap.String("subject", claims.Subject),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			playerCtx := &auth.PlayerContext{
				PlayerID: playerID,
				Wallet:   claims.Wallet,
			}

			ctx := auth.WithPlayer(r.Context(), playerCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
