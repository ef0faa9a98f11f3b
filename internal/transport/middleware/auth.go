package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/macrotrack-backend/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// Auth puts the client address and, for a valid bearer token, the user id
// into the request context. Requests without a token continue anonymously;
// endpoints that need a user reject them later. A token that fails
// verification is rejected with 401.
func Auth(validator tokenValidator, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxutil.WithClientIP(r.Context(), remoteHost(r))

			token, present := bearerToken(r)
			if !present {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			userID, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.DebugContext(ctx, "token rejected",
					append(ctxutil.LogAttrs(ctx), slog.String("error", err.Error()))...,
				)
				writeFailure(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			noteUser(w, userID.String())
			next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(ctx, userID)))
		})
	}
}

// bearerToken reports the token and whether an Authorization header with
// the Bearer scheme was sent at all.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
