package observability

import (
	"context"

	"go-crmhub/internal/logging"

	"github.com/gin-gonic/gin"
)

// LoggerContextMiddleware 将 trace_id / user_id / tenant_id 注入 logger，
// 并放入请求 context，handler 内可直接取带字段 logger。
func LoggerContextMiddleware(base *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if v, ok := c.Get(TraceIDKey); ok {
			ctx = context.WithValue(ctx, "trace_id", v)
		}
		if uid, ok := c.Get("user_id"); ok {
			ctx = context.WithValue(ctx, "user_id", uid)
		}
		if tid, ok := c.Get("tenant_id"); ok {
			ctx = context.WithValue(ctx, "tenant_id", tid)
		}
		lg := base.WithContext(ctx)
		ctx = context.WithValue(ctx, loggerKey{}, lg)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

type loggerKey struct{}
