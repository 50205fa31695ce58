package api

import (
	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct{ d Dependencies }

func NewTemplateHandler(d Dependencies) *TemplateHandler { return &TemplateHandler{d: d} }

func (h *TemplateHandler) Index(c *gin.Context) {
	res, err := h.d.Template.List(c.Request.Context(), tenantID(c))
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": res})
}

func (h *TemplateHandler) Save(c *gin.Context) {
	var req struct {
		ID      int64  `form:"id" json:"id"`
		Name    string `form:"name" json:"name"`
		Body    string `form:"body" json:"body"`
		Channel string `form:"channel" json:"channel"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	id, err := h.d.Template.Save(c.Request.Context(), service.SaveTemplateParams{TenantID: tenantID(c), ID: req.ID, Name: req.Name, Body: req.Body, Channel: req.Channel})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *TemplateHandler) ChangeStatus(c *gin.Context) {
	id := qInt64(c, "id")
	st := qInt(c, "status", 0)
	if err := h.d.Template.ChangeStatus(c.Request.Context(), tenantID(c), id, int8(st)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	id := qInt64(c, "id")
	if err := h.d.Template.Delete(c.Request.Context(), tenantID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// Send 渲染并投递模板消息到 Kafka
func (h *TemplateHandler) Send(c *gin.Context) {
	var req struct {
		TemplateID int64   `form:"template_id" json:"template_id"`
		ContactIDs []int64 `form:"contact_ids" json:"contact_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	res, err := h.d.Template.Send(c.Request.Context(), tenantID(c), req.TemplateID, req.ContactIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}
