package api

import (
	"strings"

	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"
	"go-crmhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{ d Dependencies }

func NewUserHandler(d Dependencies) *UserHandler { return &UserHandler{d: d} }

func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageLimit(c)
	status := qInt8Ptr(c, "status")
	res, err := h.d.User.ListUsers(c.Request.Context(), service.ListUsersParams{TenantID: tenantID(c), Username: c.Query("username"), Status: status, Page: page, Limit: limit})
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, res)
}

func (h *UserHandler) Add(c *gin.Context) {
	var req struct {
		Username string  `form:"username" json:"username"`
		Password string  `form:"password" json:"password"`
		Nickname string  `form:"nickname" json:"nickname"`
		GroupIDs []int64 `form:"group_ids" json:"group_ids"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	id, err := h.d.User.CreateUser(c.Request.Context(), service.CreateUserParams{TenantID: tenantID(c), Username: strings.TrimSpace(req.Username), Password: req.Password, Nickname: req.Nickname, GroupIDs: req.GroupIDs})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *UserHandler) Edit(c *gin.Context) {
	var req struct {
		ID       int64   `form:"id" json:"id"`
		Nickname string  `form:"nickname" json:"nickname"`
		Password string  `form:"password" json:"password"`
		Status   *int8   `form:"status" json:"status"`
		GroupIDs []int64 `form:"group_ids" json:"group_ids"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	var pwdPtr *string
	if strings.TrimSpace(req.Password) != "" {
		pwd := req.Password
		pwdPtr = &pwd
	}
	if err := h.d.User.EditUser(c.Request.Context(), service.EditUserParams{TenantID: tenantID(c), ID: req.ID, Nickname: req.Nickname, Password: pwdPtr, Status: req.Status, GroupIDs: req.GroupIDs}); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ReconcileGroups 全量收敛用户组关系：请求里的集合即期望的最终集合
func (h *UserHandler) ReconcileGroups(c *gin.Context) {
	var req struct {
		UserID   int64   `form:"user_id" json:"user_id"`
		GroupIDs []int64 `form:"group_ids" json:"group_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	tid := tenantID(c)
	if err := h.d.User.ReconcileGroups(c.Request.Context(), tid, req.UserID, req.GroupIDs); err != nil {
		response.FromError(c, err)
		return
	}
	gids, err := h.d.User.GroupsOfUser(c.Request.Context(), tid, req.UserID)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"group_ids": gids})
}

func (h *UserHandler) Groups(c *gin.Context) {
	uid := qInt64(c, "user_id")
	if uid <= 0 {
		response.Error(c, retcode.EMPTY_PARAMS, "user_id required")
		return
	}
	gids, err := h.d.User.GroupsOfUser(c.Request.Context(), tenantID(c), uid)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"group_ids": gids})
}

func (h *UserHandler) ChangeStatus(c *gin.Context) {
	id := qInt64(c, "id")
	st := qInt(c, "status", 0)
	if err := h.d.User.ChangeStatus(c.Request.Context(), tenantID(c), id, int8(st)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := qInt64(c, "id")
	if err := h.d.User.DeleteUser(c.Request.Context(), tenantID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}
