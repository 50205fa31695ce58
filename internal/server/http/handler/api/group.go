package api

import (
	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct{ d Dependencies }

func NewGroupHandler(d Dependencies) *GroupHandler { return &GroupHandler{d: d} }

func (h *GroupHandler) Index(c *gin.Context) {
	res, err := h.d.Group.List(c.Request.Context(), tenantID(c))
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": res})
}

func (h *GroupHandler) Add(c *gin.Context) {
	var req struct {
		Label      string `form:"label" json:"label"`
		Remark     string `form:"remark" json:"remark"`
		Restricted bool   `form:"restricted" json:"restricted"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	id, err := h.d.Group.Add(c.Request.Context(), service.AddGroupParams{TenantID: tenantID(c), Label: req.Label, Remark: req.Remark, Restricted: req.Restricted})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *GroupHandler) Edit(c *gin.Context) {
	var req struct {
		ID         int64   `form:"id" json:"id"`
		Label      string  `form:"label" json:"label"`
		Remark     *string `form:"remark" json:"remark"`
		Restricted *bool   `form:"restricted" json:"restricted"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Group.Edit(c.Request.Context(), service.EditGroupParams{TenantID: tenantID(c), ID: req.ID, Label: req.Label, Remark: req.Remark, Restricted: req.Restricted}); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *GroupHandler) ChangeStatus(c *gin.Context) {
	id := qInt64(c, "id")
	st := qInt(c, "status", 0)
	if err := h.d.Group.ChangeStatus(c.Request.Context(), tenantID(c), id, int8(st)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *GroupHandler) Delete(c *gin.Context) {
	id := qInt64(c, "id")
	if err := h.d.Group.Delete(c.Request.Context(), tenantID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// AddMember 宽容加组：重复加入幂等成功
func (h *GroupHandler) AddMember(c *gin.Context) {
	gid := qInt64(c, "gid")
	uid := qInt64(c, "uid")
	rel, err := h.d.Group.AddMember(c.Request.Context(), tenantID(c), gid, uid)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, rel)
}

// CreateMembership 严格加组：重复加入返回冲突错误
func (h *GroupHandler) CreateMembership(c *gin.Context) {
	var req struct {
		GroupID int64 `form:"group_id" json:"group_id"`
		UserID  int64 `form:"user_id" json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	rel, err := h.d.Group.CreateMembership(c.Request.Context(), tenantID(c), req.GroupID, req.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, rel)
}

func (h *GroupHandler) DelMember(c *gin.Context) {
	gid := qInt64(c, "gid")
	uid := qInt64(c, "uid")
	if gid <= 0 || uid <= 0 {
		response.Error(c, retcode.EMPTY_PARAMS, "gid and uid required")
		return
	}
	if err := h.d.Group.RemoveMember(c.Request.Context(), tenantID(c), gid, uid); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *GroupHandler) Members(c *gin.Context) {
	gid := qInt64(c, "gid")
	res, err := h.d.Group.Members(c.Request.Context(), tenantID(c), gid)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"list": res})
}
