package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	// Last-Event-ID is sent by EventSource when it reconnects
	corsAllowHeaders = "Content-Type, Last-Event-ID"
	corsMaxAge       = "600"
)

// originPolicy matches request origins against server.allowed_origins.
// An entry ending in "*" matches any origin sharing the text before it,
// so "http://localhost:*" admits a page on any local port.
type originPolicy struct {
	exact    map[string]struct{}
	prefixes []string
}

func newOriginPolicy(allowed []string) originPolicy {
	p := originPolicy{exact: make(map[string]struct{}, len(allowed))}
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if prefix, ok := strings.CutSuffix(origin, "*"); ok {
			p.prefixes = append(p.prefixes, prefix)
			continue
		}
		p.exact[origin] = struct{}{}
	}
	return p
}

func (p originPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if _, ok := p.exact[origin]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// CORSMiddleware lets pages from allowed origins drive the session API.
// A preflight is answered here; any other request continues to its route.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	policy := newOriginPolicy(allowedOrigins)

	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if !policy.allows(origin) {
			c.Next()
			return
		}
		header.Set("Access-Control-Allow-Origin", origin)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			header.Set("Access-Control-Allow-Methods", corsAllowMethods)
			header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			header.Set("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// LoggerMiddleware logs requests
func LoggerMiddleware() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		// The event stream stays open for the life of the page
		Skip: func(c *gin.Context) bool {
			return strings.HasSuffix(c.FullPath(), "/events")
		},
	})
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
