package api

import (
	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct{ d Dependencies }

func NewContactHandler(d Dependencies) *ContactHandler { return &ContactHandler{d: d} }

func (h *ContactHandler) List(c *gin.Context) {
	page, limit := pageLimit(c)
	res, err := h.d.Contact.List(c.Request.Context(), service.ListContactsParams{TenantID: tenantID(c), Name: c.Query("name"), Phone: c.Query("phone"), Page: page, Limit: limit})
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, res)
}

func (h *ContactHandler) Save(c *gin.Context) {
	var req struct {
		ID    int64             `form:"id" json:"id"`
		Name  string            `form:"name" json:"name"`
		Phone string            `form:"phone" json:"phone"`
		Email string            `form:"email" json:"email"`
		Attrs map[string]string `form:"attrs" json:"attrs"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	id, err := h.d.Contact.Save(c.Request.Context(), service.SaveContactParams{TenantID: tenantID(c), ID: req.ID, Name: req.Name, Phone: req.Phone, Email: req.Email, Attrs: req.Attrs})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id := qInt64(c, "id")
	if err := h.d.Contact.Delete(c.Request.Context(), tenantID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
