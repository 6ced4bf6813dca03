package endpoints

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"drivegate/internal/config"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
)

// Auth0Middleware validates inbound bearer tokens against the configured
// Auth0 tenant. Routes stay open when no tenant is configured; this guards
// this service's surface only, the upstream is always unauthenticated.
func Auth0Middleware() gin.HandlerFunc {
	slog.Info("Auth0 middleware initialized",
		"domain", config.Auth0Domain,
		"audience", config.Auth0Audience)

	issuerURL, _ := url.Parse(fmt.Sprintf("https://%s/", config.Auth0Domain))
	provider := jwks.NewCachingProvider(issuerURL, 24*time.Hour)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{config.Auth0Audience},
	)
	if err != nil {
		// Only possible with invalid configuration at startup.
		panic(fmt.Sprintf("Failed to create JWT validator: %v", err))
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwtValidator.ValidateToken(context.Background(), tokenString)
		if err != nil {
			slog.Warn("Token validation failed", "error", err, "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		if claims, ok := token.(*validator.ValidatedClaims); ok {
			c.Set("user_id", claims.RegisteredClaims.Subject)
		}

		c.Next()
	}
}
