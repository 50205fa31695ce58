package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func qInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

func qInt64(c *gin.Context, key string) int64 {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	i, _ := strconv.ParseInt(v, 10, 64)
	return i
}

func qInt8Ptr(c *gin.Context, key string) *int8 {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	iv, err := strconv.ParseInt(v, 10, 8)
	if err != nil {
		return nil
	}
	vv := int8(iv)
	return &vv
}

func pageLimit(c *gin.Context) (int, int) { return qInt(c, "page", 1), qInt(c, "limit", 20) }

// tenantID 取认证中间件注入的租户；公共接口可用 X-Tenant-Id 头或 query 兜底
func tenantID(c *gin.Context) int64 {
	if v, ok := c.Get("tenant_id"); ok {
		if id, ok2 := v.(int64); ok2 {
			return id
		}
	}
	if h := c.GetHeader("X-Tenant-Id"); h != "" {
		id, _ := strconv.ParseInt(h, 10, 64)
		return id
	}
	return qInt64(c, "tenant_id")
}
