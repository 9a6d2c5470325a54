package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware guards routes behind a valid session token.
type Middleware struct {
	issuer *TokenIssuer
	logger *zap.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(issuer *TokenIssuer, logger *zap.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// RequireAuth validates the session token and injects its claims into the
// request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verify(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// RequireAdmin validates the session token and additionally requires the
// admin flag.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := m.verify(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}
		if !claims.IsAdmin {
			m.forbidden(w, "Admin access required")
			return
		}
		next(w, r.WithContext(WithClaims(r.Context(), claims)))
	}
}

// verify extracts the token from the session cookie or the Authorization
// header and validates it.
func (m *Middleware) verify(r *http.Request) (*Claims, bool) {
	var tokenString string

	if cookie, err := r.Cookie(SessionCookie); err == nil {
		tokenString = cookie.Value
	} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}

	if tokenString == "" {
		return nil, false
	}

	claims, err := m.issuer.Verify(tokenString)
	if err != nil {
		m.logger.Debug("Session token rejected", zap.Error(err))
		return nil, false
	}
	return claims, true
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusUnauthorized, "unauthorized", message)
}

func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	m.writeError(w, http.StatusForbidden, "forbidden", message)
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	}); err != nil {
		m.logger.Error("Failed to write auth error response", zap.Error(err))
	}
}
