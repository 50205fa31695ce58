package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/metrics"
	"go-crmhub/internal/pkg/cache"
	"go-crmhub/internal/repository/dao"
	"go-crmhub/pkg/crypto"

	"gorm.io/gorm"
)

type UserService struct {
	Users  *dao.UserDAO
	Groups *dao.GroupDAO
	Rel    *dao.MembershipDAO
	DB     *gorm.DB
	ListC  cache.Cache // key -> json(ListUsersResult)
	InfoC  cache.Cache // key -> json(UserDTO)
}

func NewUserService(u *dao.UserDAO, g *dao.GroupDAO, rel *dao.MembershipDAO, db *gorm.DB) *UserService {
	l1 := cache.NewSimpleAdapter(cache.New(30 * time.Second))
	l1Info := cache.NewSimpleAdapter(cache.New(60 * time.Second))
	return &UserService{Users: u, Groups: g, Rel: rel, DB: db, ListC: l1, InfoC: l1Info}
}

// NewUserServiceWithCache 注入统一的 LayeredCache，列表与详情共用实例
func NewUserServiceWithCache(u *dao.UserDAO, g *dao.GroupDAO, rel *dao.MembershipDAO, db *gorm.DB, c cache.Cache) *UserService {
	return &UserService{Users: u, Groups: g, Rel: rel, DB: db, ListC: c, InfoC: c}
}

type ListUsersResult struct {
	List  []UserDTO `json:"list"`
	Total int64     `json:"total"`
}

type UserDTO struct {
	ID         int64             `json:"id"`
	Username   string            `json:"username"`
	Nickname   string            `json:"nickname"`
	Status     int8              `json:"status"`
	CreateTime int64             `json:"create_time"`
	UpdateTime int64             `json:"update_time"`
	Groups     []UserGroupSimple `json:"groups"`
}

type UserGroupSimple struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

type ListUsersParams struct {
	TenantID    int64
	Username    string
	Status      *int8
	Page, Limit int
}

func (s *UserService) listKey(p ListUsersParams) string {
	st := ""
	if p.Status != nil {
		st = strconv.Itoa(int(*p.Status))
	}
	// 列表 key 按筛选项参数化，无法逐一失效，靠短 TTL 过期
	return fmt.Sprintf("user:list:%d:%s:%s:%d:%d", p.TenantID, p.Username, st, p.Page, p.Limit)
}

func (s *UserService) ListUsers(ctx context.Context, p ListUsersParams) (*ListUsersResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	key := s.listKey(p)
	if s.ListC != nil {
		if str, _ := s.ListC.Get(ctx, key); str != "" {
			var cached ListUsersResult
			if err := json.Unmarshal([]byte(str), &cached); err == nil {
				return &cached, nil
			}
		}
	}
	res, err := s.listUsersNoCache(ctx, p)
	if err != nil {
		return nil, err
	}
	if s.ListC != nil {
		b, _ := json.Marshal(res)
		_ = s.ListC.SetEX(ctx, key, string(b), cache.JitterTTL(30*time.Second))
	}
	return res, nil
}

func (s *UserService) listUsersNoCache(ctx context.Context, p ListUsersParams) (*ListUsersResult, error) {
	offset := (p.Page - 1) * p.Limit
	users, total, err := s.Users.List(ctx, p.TenantID, p.Username, p.Status, offset, p.Limit)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	relMap, _ := s.Rel.ListGroupIDsByUsers(ctx, p.TenantID, ids)
	uniq := map[int64]struct{}{}
	for _, gids := range relMap {
		for _, gid := range gids {
			uniq[gid] = struct{}{}
		}
	}
	gidList := make([]int64, 0, len(uniq))
	for gid := range uniq {
		gidList = append(gidList, gid)
	}
	groups, _ := s.Groups.FindByIDs(ctx, p.TenantID, gidList)
	resSlice := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dto := UserDTO{ID: u.ID, Username: u.Username, Nickname: u.Nickname, Status: u.Status, CreateTime: u.CreateTime, UpdateTime: u.UpdateTime}
		// relMap values are in membership insertion order; keep it
		if gids, ok := relMap[u.ID]; ok {
			for _, gid := range gids {
				if g, ok2 := groups[gid]; ok2 {
					dto.Groups = append(dto.Groups, UserGroupSimple{ID: g.ID, Label: g.Label})
				}
			}
		}
		resSlice = append(resSlice, dto)
	}
	return &ListUsersResult{List: resSlice, Total: total}, nil
}

type CreateUserParams struct {
	TenantID                     int64
	Username, Password, Nickname string
	GroupIDs                     []int64
}

func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (int64, error) {
	if p.Username == "" {
		return 0, apperr.NewValidation("username", "required")
	}
	if p.Password == "" {
		return 0, apperr.NewValidation("password", "required")
	}
	if err := s.checkGroupsExist(ctx, p.TenantID, p.GroupIDs); err != nil {
		return 0, err
	}
	var newID int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().Unix()
		user := &model.User{TenantID: p.TenantID, Username: p.Username, Nickname: p.Nickname, Password: crypto.HashPassword(p.Password), CreateTime: now, UpdateTime: now, Status: 1}
		if err := tx.WithContext(ctx).Create(user).Error; err != nil {
			return apperr.FromDB(err, "username")
		}
		newID = user.ID
		return s.Rel.Reconcile(ctx, tx, p.TenantID, user.ID, p.GroupIDs)
	})
	return newID, err
}

type EditUserParams struct {
	TenantID int64
	ID       int64
	Nickname string
	Password *string
	Status   *int8
	GroupIDs []int64 // nil keeps memberships untouched; empty slice clears them
}

func (s *UserService) EditUser(ctx context.Context, p EditUserParams) error {
	if p.ID <= 0 {
		return apperr.NewValidation("id", "required")
	}
	if p.GroupIDs != nil {
		if err := s.checkGroupsExist(ctx, p.TenantID, p.GroupIDs); err != nil {
			return err
		}
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		users := s.Users.WithTx(tx)
		u, err := users.FindByID(ctx, p.TenantID, p.ID)
		if err != nil {
			return err
		}
		if u == nil {
			return &apperr.NotFound{Entity: "user", ID: p.ID}
		}
		if p.Nickname != "" {
			u.Nickname = p.Nickname
		}
		if p.Status != nil {
			u.Status = *p.Status
		}
		u.UpdateTime = time.Now().Unix()
		if err := users.Update(ctx, u); err != nil {
			return err
		}
		if p.Password != nil && *p.Password != "" {
			if err := users.UpdatePassword(ctx, p.TenantID, u.ID, crypto.HashPassword(*p.Password)); err != nil {
				return err
			}
		}
		if p.GroupIDs != nil {
			return s.Rel.Reconcile(ctx, tx, p.TenantID, u.ID, p.GroupIDs)
		}
		return nil
	})
	if err == nil {
		s.invalidateUser(p.TenantID, p.ID)
	}
	return err
}

// ReconcileGroups converges the persisted membership set of userID to
// groupIDs. Duplicates in the input are irrelevant; an empty slice clears all
// memberships. Runs in one transaction so either both the adds and removes
// land or neither does.
func (s *UserService) ReconcileGroups(ctx context.Context, tenantID, userID int64, groupIDs []int64) error {
	if userID <= 0 {
		return apperr.NewValidation("user_id", "required")
	}
	u, err := s.Users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return &apperr.NotFound{Entity: "user", ID: userID}
	}
	if err := s.checkGroupsExist(ctx, tenantID, groupIDs); err != nil {
		return err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.Rel.Reconcile(ctx, tx, tenantID, userID, groupIDs)
	})
	if err != nil {
		metrics.MembershipReconcileTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.MembershipReconcileTotal.WithLabelValues("ok").Inc()
	s.invalidateUser(tenantID, userID)
	return nil
}

// GroupsOfUser 按插入顺序返回用户所在组 id
func (s *UserService) GroupsOfUser(ctx context.Context, tenantID, userID int64) ([]int64, error) {
	return s.Rel.ListGroupIDsByUser(ctx, tenantID, userID)
}

func (s *UserService) DeleteUser(ctx context.Context, tenantID, id int64) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// clear memberships first; with FK cascade this is belt and braces
		if err := tx.WithContext(ctx).Where("tenant_id = ? AND user_id = ?", tenantID, id).Delete(&model.UserGroup{}).Error; err != nil {
			return err
		}
		return s.Users.WithTx(tx).Delete(ctx, tenantID, id)
	})
	if err == nil {
		s.invalidateUser(tenantID, id)
	}
	return err
}

func (s *UserService) ChangeStatus(ctx context.Context, tenantID, id int64, status int8) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	if err := s.Users.UpdateStatus(ctx, tenantID, id, status); err != nil {
		return err
	}
	s.invalidateUser(tenantID, id)
	return nil
}

// checkGroupsExist surfaces the offending group id before the FK constraint
// would at commit time, so callers get a field error instead of a bare
// constraint failure.
func (s *UserService) checkGroupsExist(ctx context.Context, tenantID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	uniq := make([]int64, 0, len(ids))
	seen := map[int64]struct{}{}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	found, err := s.Groups.FindByIDs(ctx, tenantID, uniq)
	if err != nil {
		return err
	}
	for _, id := range uniq {
		if _, ok := found[id]; !ok {
			return apperr.NewValidation("group_ids", fmt.Sprintf("group %d not found", id))
		}
	}
	return nil
}

func (s *UserService) invalidateUser(tenantID, id int64) {
	if s.InfoC != nil {
		_ = s.InfoC.Del(context.Background(), fmt.Sprintf("user:info:%d:%d", tenantID, id))
	}
}
