package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/repository/dao"
	"go-crmhub/internal/service"
	"go-crmhub/internal/util/retcode"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type env struct {
	router *gin.Engine
	db     *gorm.DB
	tid    int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Tenant{}, &model.User{}, &model.Group{}, &model.UserGroup{}))
	tn := &model.Tenant{Name: "acme", Status: 1, CreateTime: time.Now().Unix()}
	require.NoError(t, db.Create(tn).Error)

	users := dao.NewUserDAO(db)
	groups := dao.NewGroupDAO(db)
	rel := dao.NewMembershipDAO(db)
	d := Dependencies{
		User:  service.NewUserService(users, groups, rel, db),
		Group: service.NewGroupService(groups, users, rel, db),
	}
	uh := NewUserHandler(d)
	gh := NewGroupHandler(d)

	r := gin.New()
	// 测试环境代替认证中间件注入租户
	r.Use(func(c *gin.Context) { c.Set("tenant_id", tn.ID) })
	r.POST("/api/User/add", uh.Add)
	r.POST("/api/User/reconcileGroups", uh.ReconcileGroups)
	r.GET("/api/User/groups", uh.Groups)
	r.POST("/api/Group/add", gh.Add)
	r.GET("/api/Group/addMember", gh.AddMember)
	r.POST("/api/Group/membership", gh.CreateMembership)
	r.GET("/api/Group/members", gh.Members)
	return &env{router: r, db: db, tid: tn.ID}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, method, path string, body interface{}) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestReconcileGroupsEndpoint(t *testing.T) {
	e := newEnv(t)

	g1 := e.do(t, "POST", "/api/Group/add", gin.H{"label": "sales"})
	require.Equal(t, retcode.SUCCESS, g1.Code)
	g2 := e.do(t, "POST", "/api/Group/add", gin.H{"label": "vip"})
	require.Equal(t, retcode.SUCCESS, g2.Code)
	var gid1, gid2 struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(g1.Data, &gid1))
	require.NoError(t, json.Unmarshal(g2.Data, &gid2))

	u := e.do(t, "POST", "/api/User/add", gin.H{"username": "alice", "password": "secret123", "group_ids": []int64{gid1.ID}})
	require.Equal(t, retcode.SUCCESS, u.Code)
	var uid struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(u.Data, &uid))

	res := e.do(t, "POST", "/api/User/reconcileGroups", gin.H{"user_id": uid.ID, "group_ids": []int64{gid2.ID}})
	require.Equal(t, retcode.SUCCESS, res.Code)
	var got struct {
		GroupIDs []int64 `json:"group_ids"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &got))
	assert.Equal(t, []int64{gid2.ID}, got.GroupIDs)
}

func TestReconcileGroupsUnknownGroupReturnsParamError(t *testing.T) {
	e := newEnv(t)
	u := e.do(t, "POST", "/api/User/add", gin.H{"username": "alice", "password": "secret123"})
	var uid struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(u.Data, &uid))

	res := e.do(t, "POST", "/api/User/reconcileGroups", gin.H{"user_id": uid.ID, "group_ids": []int64{9999}})
	assert.Equal(t, retcode.EMPTY_PARAMS, res.Code)
}

func TestStrictMembershipConflictCode(t *testing.T) {
	e := newEnv(t)
	g := e.do(t, "POST", "/api/Group/add", gin.H{"label": "sales"})
	var gid struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(g.Data, &gid))
	u := e.do(t, "POST", "/api/User/add", gin.H{"username": "alice", "password": "secret123"})
	var uid struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(u.Data, &uid))

	body := gin.H{"group_id": gid.ID, "user_id": uid.ID}
	first := e.do(t, "POST", "/api/Group/membership", body)
	assert.Equal(t, retcode.SUCCESS, first.Code)
	second := e.do(t, "POST", "/api/Group/membership", body)
	assert.Equal(t, retcode.DATA_EXISTS, second.Code)

	// forgiving path still succeeds on the same pair
	forgiving := e.do(t, "GET", fmt.Sprintf("/api/Group/addMember?gid=%d&uid=%d", gid.ID, uid.ID), nil)
	assert.Equal(t, retcode.SUCCESS, forgiving.Code)
}

func TestDuplicateUsernameCode(t *testing.T) {
	e := newEnv(t)
	first := e.do(t, "POST", "/api/User/add", gin.H{"username": "alice", "password": "secret123"})
	require.Equal(t, retcode.SUCCESS, first.Code)
	second := e.do(t, "POST", "/api/User/add", gin.H{"username": "alice", "password": "other456"})
	assert.Equal(t, retcode.DATA_EXISTS, second.Code)
}
