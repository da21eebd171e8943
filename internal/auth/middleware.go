// internal/auth/middleware.go
// Session issuance and credential handling live in the upstream auth service.
// This middleware only verifies the token it minted and tags the request
// context with the identity and role the core operates on.

package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/solacelink/solace-backend/internal/common/utils"
	"github.com/solacelink/solace-backend/internal/users"
)

// Claims is the JWT payload shared with the upstream auth service.
type Claims struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Middleware provides authentication middleware
type Middleware struct {
	secret []byte
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

// Authenticate verifies the JWT token and adds the user identity and role
// to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.parseClaims(token)
		if err != nil {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid subject claim")
			return
		}

		role, ok := users.ParseRole(claims.Role)
		if !ok {
			utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid role claim")
			return
		}

		ctx := utils.WithIdentity(r.Context(), userID, role, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls a bearer token from the Authorization header, falling
// back to the query string for websocket upgrades that cannot set headers.
func (m *Middleware) extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (m *Middleware) parseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
