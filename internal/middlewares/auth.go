package middlewares

import (
	"net/http"
	"strings"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/pkg/utils"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token and stores the caller's identity
// in the gin context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.CodeUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.CodeUnauthorized, "Invalid Authorization header format")
			return
		}

		claims, err := utils.ParseToken(parts[1], cfg.JWT.SecretKey)
		if err != nil {
			xerr.AbortWithError(c, http.StatusUnauthorized, xerr.CodeTokenInvalid, "Invalid or expired token")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("email", claims.Email)

		c.Next()
	}
}
