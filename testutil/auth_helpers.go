package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/middleware"
)

// AllScopes is the scope string of a tailor allowed to read and write orders
var AllScopes = []string{middleware.ScopeReadOrders, middleware.ScopeWriteOrders}

// MockValidatedClaims creates the claims EnsureValidToken would produce for subject
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext sets the same context keys as EnsureValidToken
func SetMockAuthContext(c *gin.Context, userID, accessToken string, scopes []string) {
	c.Set("user_id", userID)
	c.Set("access_token", accessToken)
	c.Set("validated_claims", MockValidatedClaims(userID, "https://test.auth0.com/", scopes))
}

// MockAuthMiddleware stands in for EnsureValidToken in tests
func MockAuthMiddleware(userID, accessToken string, scopes []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, accessToken, scopes)
		c.Next()
	}
}
