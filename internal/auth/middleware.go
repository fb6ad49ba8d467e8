package auth

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware validates bearer tokens and puts the owner id in the request
// context.
type Middleware struct {
	secret []byte
	// Exempt paths skip authentication entirely.
	exempt map[string]bool
	// OnError writes the rejection; defaults to a plain 401.
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

func NewMiddleware(secret []byte, exempt ...string) *Middleware {
	m := &Middleware{secret: secret, exempt: make(map[string]bool, len(exempt))}
	for _, p := range exempt {
		m.exempt[p] = true
	}
	return m
}

// Wrap applies authentication to next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exempt[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseToken(extractBearer(r), m.secret)
		if err != nil {
			slog.WarnContext(r.Context(), "Authentication failed", "path", r.URL.Path, "error", err)
			if m.OnError != nil {
				m.OnError(w, r, err)
			} else {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), claims.Subject)))
	})
}

func extractBearer(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
