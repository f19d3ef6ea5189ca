package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/dealer/reporting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Client context keys
const (
	ClientIDKey     = "client_id"
	ClientHeaderKey = "X-Client-ID"
)

// ClientConfig holds configuration for the client middleware
type ClientConfig struct {
	// SkipPaths are paths served without a client (e.g. health checks)
	SkipPaths []string
	// Required rejects requests without a client ID
	Required bool
	Logger   *zap.Logger
}

// DefaultClientConfig returns default client middleware configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SkipPaths: []string{"/health", "/ready", "/api/v1/health", "/api/v1/ready"},
		Required:  true,
	}
}

// ClientMiddleware extracts the tenant from the X-Client-ID header
func ClientMiddleware() gin.HandlerFunc {
	return ClientMiddlewareWithConfig(DefaultClientConfig())
}

// ClientMiddlewareWithConfig returns client middleware with custom configuration.
// The ID must be a positive integer; it is stored in the gin context and in
// the request context for the service layer.
func ClientMiddlewareWithConfig(cfg ClientConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		raw := strings.TrimSpace(c.GetHeader(ClientHeaderKey))
		if raw == "" {
			if cfg.Required {
				respondMissingClient(c, "Client identification required")
				return
			}
			c.Next()
			return
		}

		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || clientID <= 0 {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Rejected client header", zap.String("value", raw))
			}
			respondMissingClient(c, "Invalid client ID")
			return
		}

		c.Set(ClientIDKey, clientID)
		c.Request = c.Request.WithContext(logger.WithClientID(c.Request.Context(), clientID))
		c.Next()
	}
}

func respondMissingClient(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeMissingClient, message, GetRequestID(c)))
}

// GetClientID retrieves the client ID from gin.Context
func GetClientID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ClientIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
