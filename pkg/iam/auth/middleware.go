package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/linearflow/linearflow/pkg/kernel"
)

// AuthContext is the validated identity of the request's principal
type AuthContext struct {
	UserID kernel.UserID
	Email  kernel.Email
}

const localsAuthContext = "auth_context"

// TokenMiddleware validates bearer tokens and injects the principal
type TokenMiddleware struct {
	tokenService TokenService
}

// NewAuthMiddleware creates the bearer-token middleware
func NewAuthMiddleware(tokenService TokenService) *TokenMiddleware {
	return &TokenMiddleware{tokenService: tokenService}
}

// Authenticate validates the Authorization header and stores the
// principal in the request context
func (m *TokenMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return ErrMissingToken()
		}

		// Format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ErrInvalidToken().WithDetail("reason", "malformed authorization header")
		}

		claims, err := m.tokenService.ValidateAccessToken(parts[1])
		if err != nil {
			return err
		}

		c.Locals(localsAuthContext, &AuthContext{
			UserID: claims.UserID,
			Email:  claims.Email,
		})

		return c.Next()
	}
}

// GetAuthContext extracts the authenticated principal from the request
func GetAuthContext(c *fiber.Ctx) (*AuthContext, bool) {
	authContext, ok := c.Locals(localsAuthContext).(*AuthContext)
	return authContext, ok
}
