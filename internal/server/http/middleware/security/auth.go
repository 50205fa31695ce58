package security

import (
	"strings"

	"go-crmhub/internal/logging"
	"go-crmhub/internal/security/jwt"
	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// Auth 认证中间件：Bearer token -> claims -> user_id / tenant_id 注入 context。
// sessions 非空时校验 jti 是否仍为该用户最新会话（退出/刷新后旧 token 立即失效）。
func Auth(j *jwt.Manager, lg *logging.Logger, sessions *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			response.Error(c, retcode.AUTH_ERROR, "missing token")
			c.Abort()
			return
		}
		token := strings.TrimSpace(auth[7:])
		claims, err := j.Parse(token)
		if err != nil {
			response.Error(c, retcode.AUTH_ERROR, "invalid token")
			c.Abort()
			return
		}
		if sessions != nil && !sessions.CheckJTI(c.Request.Context(), claims) {
			response.Error(c, retcode.ACCESS_TOKEN_TIMEOUT, "token expired")
			c.Abort()
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("claims", claims)
		c.Next()
	}
}
