package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/lecturer_claims_app/internal/utils"
	"github.com/gin-gonic/gin"
)

var untrackedPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// AnalyticsEventName turns a route template into a stable event name.
// Path parameters are dropped, so "/api/v1/claims/:claimID/approve" becomes
// "claims_approve" and the id travels as an event property instead.
func AnalyticsEventName(method, route string) string {
	route = strings.TrimPrefix(route, "/api/v1")
	parts := []string{}
	for _, seg := range strings.Split(route, "/") {
		if seg == "" || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			continue
		}
		parts = append(parts, strings.ReplaceAll(seg, ".", "_"))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.ToLower(method) + "_" + strings.Join(parts, "_")
}

// PosthogMiddleware reports successful authenticated requests to PostHog.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || untrackedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}
		event := AnalyticsEventName(c.Request.Method, c.FullPath())
		if event == "" {
			return
		}

		props := map[string]any{
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		for _, p := range c.Params {
			props[p.Key] = p.Value
		}
		posthogClient.Enqueue(userID, event, props)
	}
}
