package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/spiral-worksheets/pkg/ctxutil"
)

// TokenValidator validates operator bearer tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

// Auth requires a valid operator bearer token and stores the operator name
// in the request context. Requests without a token are rejected.
func Auth(validator TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="spiral-worksheets"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			operator, err := validator.ValidateAccessToken(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="spiral-worksheets", error="invalid_token"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := ctxutil.WithOperator(r.Context(), operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
