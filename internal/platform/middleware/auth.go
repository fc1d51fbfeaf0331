package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates bearer tokens from the identity provider.
type TokenValidator interface {
	ValidateToken(tokenString string) (subject string, err error)
}

type contextKeySubject struct{}

// GetSubject retrieves the authenticated external subject id from the context.
// Empty when the request carried no (valid) bearer token.
func GetSubject(ctx context.Context) string {
	sub, ok := ctx.Value(contextKeySubject{}).(string)
	if !ok {
		return ""
	}
	return sub
}

// BearerAuth validates an Authorization bearer token when present and stores
// the token subject in the request context. Tokens are advisory for learner
// actions (the handler prefers the token subject over the body field); a
// malformed token is rejected outright, a missing one is allowed through
// because payment callbacks authenticate by signature instead.
func BearerAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || validator == nil {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")
			if token == header {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			subject, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "invalid bearer token",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeySubject{}, subject)))
		})
	}
}
