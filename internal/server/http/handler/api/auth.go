package api

import (
	"go-crmhub/internal/security/jwt"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ d Dependencies }

func NewAuthHandler(d Dependencies) *AuthHandler { return &AuthHandler{d: d} }

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		TenantID int64 `form:"tenant_id" json:"tenant_id"`
		Username string
		Password string
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if req.TenantID == 0 {
		req.TenantID = tenantID(c)
	}
	res, err := h.d.Auth.Login(c.Request.Context(), req.TenantID, req.Username, req.Password)
	if err != nil {
		response.Error(c, retcode.LOGIN_ERROR, err.Error())
		return
	}
	response.Success(c, res)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	claims := claimsFrom(c, h.d.JWT)
	if claims == nil {
		response.Error(c, retcode.AUTH_ERROR, "invalid token")
		return
	}
	token, err := h.d.Auth.Refresh(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, retcode.AUTH_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFrom(c, h.d.JWT)
	if claims == nil {
		response.Error(c, retcode.AUTH_ERROR, "invalid token")
		return
	}
	h.d.Auth.Logout(c.Request.Context(), claims.UserID, claims.TenantID)
	response.Success(c, gin.H{"ok": true})
}

// claimsFrom 优先取中间件解析结果，公共路由上自行解析 Bearer 头
func claimsFrom(c *gin.Context, m *jwt.Manager) *jwt.Claims {
	if v, ok := c.Get("claims"); ok {
		if cl, ok2 := v.(*jwt.Claims); ok2 {
			return cl
		}
	}
	auth := c.GetHeader("Authorization")
	if len(auth) < 8 {
		return nil
	}
	cl, err := m.Parse(auth[7:])
	if err != nil {
		return nil
	}
	return cl
}
