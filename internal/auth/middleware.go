package auth

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quality-service/internal/config"
	"github.com/SAP-F-2025/quality-service/internal/handlers"
	"github.com/SAP-F-2025/quality-service/internal/models"
	"github.com/SAP-F-2025/quality-service/internal/services"
	"github.com/SAP-F-2025/quality-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

// Middleware verifies Casdoor JWTs and enforces the account whitelist: a
// valid token alone is not enough, the email must exist in the users table
// and the account must be active.
type Middleware struct {
	users  services.UserService
	logger utils.Logger
}

func NewMiddleware(cfg config.CasdoorConfig, users services.UserService, logger utils.Logger) *Middleware {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &Middleware{
		users:  users,
		logger: logger,
	}
}

// Authenticate validates the Bearer token and loads the whitelisted account
// into the request context.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorResponse{
				Message: "Missing or malformed Authorization header",
			})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			m.logger.Warn("Token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		email := claims.User.Email
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorResponse{
				Message: "Token carries no email claim",
			})
			return
		}

		user, err := m.users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			m.logger.Warn("Login rejected, account not whitelisted", "email", email)
			c.AbortWithStatusJSON(http.StatusForbidden, handlers.ErrorResponse{
				Message: "Account is not authorized for this system",
			})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, handlers.ErrorResponse{
				Message: "Account is deactivated",
			})
			return
		}

		c.Set(handlers.ContextUserKey, user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireRoles allows only the listed roles past this point.
func (m *Middleware) RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		value, exists := c.Get(handlers.ContextUserKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		user, ok := value.(*models.User)
		if !ok || !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, handlers.ErrorResponse{
				Message: "Role is not allowed to access this resource",
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
