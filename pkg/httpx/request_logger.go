package httpx

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/shoecart/internal/ports"
	"github.com/Gunvolt24/shoecart/pkg/ctxmeta"
)

// RequestLogger - access-лог запросов к корзине. 5xx пишутся как warn, служебные маршруты не пишутся.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(ctxmeta.WithSource(c.Request.Context(), ctxmeta.SourceHTTP))
		c.Next()

		route := c.FullPath()
		switch route {
		case "/metrics", "/ping":
			return
		case "":
			route = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		sp, _ := ctxmeta.SpanIDFromContext(ctx)
		status := c.Writer.Status()

		logf := log.Infof
		if status >= http.StatusInternalServerError {
			logf = log.Warnf
		}
		logf(ctx, "http %s %s product_id=%s status=%d span=%s ip=%s duration=%s size=%d",
			c.Request.Method, route, c.Param("id"), status, sp, c.ClientIP(), time.Since(start), c.Writer.Size())
	}
}
