package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bingoparty/bingoparty-go/internal/api/apierr"
	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/services/player"
)

type contextKey string

const playerContextKey contextKey = "player"

// Auth creates authentication middleware backed by session tokens
func Auth(players *player.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			pl, err := players.GetBySessionToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, model.ErrPlayerNotFound) {
					apierr.WriteError(w, apierr.NewUnauthorizedError())
				} else {
					apierr.WriteError(w, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, pl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	pl, _ := ctx.Value(playerContextKey).(*model.Player)
	return pl
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	pl := GetPlayer(ctx)
	if pl == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return pl
}
