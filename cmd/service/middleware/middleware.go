package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/mobilien/mobi-agent/app/core"
	"github.com/mobilien/mobi-agent/app/response"
	"github.com/mobilien/mobi-agent/pkg/i18n"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

// Cors answers for the widget origins only. An empty allow list keeps
// the permissive behavior for local development.
func Cors(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && originAllowed(origin, allowedOrigins) {
			c.Header("Access-Control-Allow-Origin", lo.If(len(allowedOrigins) == 0, "*").Else(origin))
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Accept-Language")
			c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Type, X-Request-Id")
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	return lo.ContainsBy(allowed, func(item string) bool {
		return strings.EqualFold(item, origin)
	})
}

// Observe records the per-route latency and error counters.
func Observe(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := appCore.Metrics().ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			appCore.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), status)
		}
	}
}
