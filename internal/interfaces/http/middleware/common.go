// Package middleware provides HTTP middleware for the reporting API.
package middleware

import (
	"strings"
	"time"

	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// MaxRequestIDLength bounds request IDs accepted from clients.
const MaxRequestIDLength = 128

// DefaultCORSMethods and DefaultCORSHeaders apply when the configuration leaves them empty.
var (
	DefaultCORSMethods = []string{"GET", "POST", "OPTIONS"}
	DefaultCORSHeaders = []string{"Content-Type", "Accept", "Origin", RequestIDHeader, ClientHeaderKey}
)

// CORS returns a gin-contrib/cors middleware built from the HTTP configuration.
// With no allowed origins, cross-origin requests get no CORS headers at all.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	if len(cfg.CORSAllowOrigins) == 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	corsCfg := cors.Config{
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowMethods) == 0 {
		corsCfg.AllowMethods = DefaultCORSMethods
	}
	if len(corsCfg.AllowHeaders) == 0 {
		corsCfg.AllowHeaders = DefaultCORSHeaders
	}

	for _, o := range cfg.CORSAllowOrigins {
		if o == "*" {
			corsCfg.AllowAllOrigins = true
			break
		}
	}
	if !corsCfg.AllowAllOrigins {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
		corsCfg.AllowCredentials = true
	}

	return cors.New(corsCfg)
}

// RequestID adds a unique request ID to each request. A client supplied
// X-Request-ID is kept when it is short enough.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(logger.RequestIDKey)
}
