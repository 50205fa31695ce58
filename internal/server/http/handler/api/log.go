package api

import (
	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type LogHandler struct{ d Dependencies }

func NewLogHandler(d Dependencies) *LogHandler { return &LogHandler{d: d} }

func (h *LogHandler) List(c *gin.Context) {
	page, limit := pageLimit(c)
	res, err := h.d.Log.List(c.Request.Context(), service.ListActionsParams{TenantID: tenantID(c), Type: qInt(c, "type", 0), Keywords: c.Query("keywords"), Page: page, Limit: limit})
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, res)
}

func (h *LogHandler) Delete(c *gin.Context) {
	id := qInt64(c, "id")
	if err := h.d.Log.Delete(c.Request.Context(), tenantID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
