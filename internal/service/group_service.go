package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/metrics"
	"go-crmhub/internal/pkg/cache"
	"go-crmhub/internal/repository/dao"

	"gorm.io/gorm"
)

type GroupService struct {
	Groups *dao.GroupDAO
	Users  *dao.UserDAO
	Rel    *dao.MembershipDAO
	DB     *gorm.DB
	Cache  cache.Cache
	TTL    time.Duration
}

func NewGroupService(g *dao.GroupDAO, u *dao.UserDAO, rel *dao.MembershipDAO, db *gorm.DB) *GroupService {
	return &GroupService{Groups: g, Users: u, Rel: rel, DB: db, Cache: cache.NewSimpleAdapter(cache.New(60 * time.Second)), TTL: 60 * time.Second}
}

func NewGroupServiceWithCache(g *dao.GroupDAO, u *dao.UserDAO, rel *dao.MembershipDAO, db *gorm.DB, c cache.Cache) *GroupService {
	return &GroupService{Groups: g, Users: u, Rel: rel, DB: db, Cache: c, TTL: 60 * time.Second}
}

type GroupDTO struct {
	ID         int64  `json:"id"`
	Label      string `json:"label"`
	Remark     string `json:"remark"`
	Status     int8   `json:"status"`
	Restricted bool   `json:"restricted"`
	CreateTime int64  `json:"create_time"`
	UpdateTime int64  `json:"update_time"`
}

func (s *GroupService) listKey(tenantID int64) string {
	return fmt.Sprintf("group:list:%d", tenantID)
}

// List 组列表，带空结果哨兵缓存
func (s *GroupService) List(ctx context.Context, tenantID int64) ([]GroupDTO, error) {
	key := s.listKey(tenantID)
	if s.Cache != nil {
		if str, _ := s.Cache.Get(ctx, key); str != "" {
			if cache.IsNilSentinel(str) {
				metrics.CacheNilHit.Inc()
				return []GroupDTO{}, nil
			}
			var cached []GroupDTO
			if err := json.Unmarshal([]byte(str), &cached); err == nil {
				return cached, nil
			}
		}
	}
	groups, err := s.Groups.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	res := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		res = append(res, GroupDTO{ID: g.ID, Label: g.Label, Remark: g.Remark, Status: g.Status, Restricted: g.Restricted, CreateTime: g.CreateTime, UpdateTime: g.UpdateTime})
	}
	if s.Cache != nil {
		if len(res) == 0 {
			_ = s.Cache.SetEX(ctx, key, cache.WrapNil(true), cache.JitterTTL(10*time.Second))
		} else {
			b, _ := json.Marshal(res)
			_ = s.Cache.SetEX(ctx, key, string(b), cache.JitterTTL(s.TTL))
		}
	}
	return res, nil
}

type AddGroupParams struct {
	TenantID   int64
	Label      string
	Remark     string
	Restricted bool
}

func (s *GroupService) Add(ctx context.Context, p AddGroupParams) (int64, error) {
	if p.Label == "" {
		return 0, apperr.NewValidation("label", "required")
	}
	now := time.Now().Unix()
	g := &model.Group{TenantID: p.TenantID, Label: p.Label, Remark: p.Remark, Restricted: p.Restricted, Status: 1, CreateTime: now, UpdateTime: now}
	if err := s.Groups.Create(ctx, g); err != nil {
		return 0, err
	}
	s.invalidate(p.TenantID)
	return g.ID, nil
}

type EditGroupParams struct {
	TenantID   int64
	ID         int64
	Label      string
	Remark     *string
	Restricted *bool
}

func (s *GroupService) Edit(ctx context.Context, p EditGroupParams) error {
	if p.ID <= 0 {
		return apperr.NewValidation("id", "required")
	}
	g, err := s.Groups.FindByID(ctx, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	if g == nil {
		return &apperr.NotFound{Entity: "group", ID: p.ID}
	}
	if p.Label != "" {
		g.Label = p.Label
	}
	if p.Remark != nil {
		g.Remark = *p.Remark
	}
	if p.Restricted != nil {
		g.Restricted = *p.Restricted
	}
	g.UpdateTime = time.Now().Unix()
	if err := s.Groups.Update(ctx, g); err != nil {
		return err
	}
	s.invalidate(p.TenantID)
	return nil
}

func (s *GroupService) ChangeStatus(ctx context.Context, tenantID, id int64, status int8) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	if err := s.Groups.UpdateStatus(ctx, tenantID, id, status); err != nil {
		return err
	}
	s.invalidate(tenantID)
	return nil
}

// Delete removes the group together with its membership rows.
func (s *GroupService) Delete(ctx context.Context, tenantID, id int64) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	if err := s.Groups.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(tenantID)
	return nil
}

// AddMember is the forgiving path: adding a user who already belongs to the
// group succeeds and returns the existing row.
func (s *GroupService) AddMember(ctx context.Context, tenantID, groupID, userID int64) (*model.UserGroup, error) {
	if err := s.checkPair(ctx, tenantID, groupID, userID); err != nil {
		return nil, err
	}
	return s.Rel.GetOrCreate(ctx, tenantID, userID, groupID)
}

// CreateMembership is the strict path: a duplicate pair comes back as a
// ConstraintViolation for the caller to surface.
func (s *GroupService) CreateMembership(ctx context.Context, tenantID, groupID, userID int64) (*model.UserGroup, error) {
	if err := s.checkPair(ctx, tenantID, groupID, userID); err != nil {
		return nil, err
	}
	rel := &model.UserGroup{TenantID: tenantID, UserID: userID, GroupID: groupID, CreatedAt: time.Now().Unix()}
	if err := s.Rel.Create(ctx, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

func (s *GroupService) RemoveMember(ctx context.Context, tenantID, groupID, userID int64) error {
	return s.Rel.DeleteMember(ctx, tenantID, groupID, userID)
}

type MemberDTO struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	JoinedAt int64  `json:"joined_at"`
}

// Members returns the members of a group in join order.
func (s *GroupService) Members(ctx context.Context, tenantID, groupID int64) ([]MemberDTO, error) {
	g, err := s.Groups.FindByID(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &apperr.NotFound{Entity: "group", ID: groupID}
	}
	rels, err := s.Rel.ListMembers(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rels))
	for _, r := range rels {
		ids = append(ids, r.UserID)
	}
	users, err := s.Users.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	res := make([]MemberDTO, 0, len(rels))
	for _, r := range rels {
		u, ok := byID[r.UserID]
		if !ok {
			continue
		}
		res = append(res, MemberDTO{UserID: u.ID, Username: u.Username, Nickname: u.Nickname, JoinedAt: r.CreatedAt})
	}
	return res, nil
}

func (s *GroupService) checkPair(ctx context.Context, tenantID, groupID, userID int64) error {
	if groupID <= 0 {
		return apperr.NewValidation("group_id", "required")
	}
	if userID <= 0 {
		return apperr.NewValidation("user_id", "required")
	}
	g, err := s.Groups.FindByID(ctx, tenantID, groupID)
	if err != nil {
		return err
	}
	if g == nil {
		return &apperr.NotFound{Entity: "group", ID: groupID}
	}
	u, err := s.Users.FindByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return &apperr.NotFound{Entity: "user", ID: userID}
	}
	return nil
}

func (s *GroupService) invalidate(tenantID int64) {
	if s.Cache != nil {
		_ = s.Cache.Del(context.Background(), s.listKey(tenantID))
	}
}
