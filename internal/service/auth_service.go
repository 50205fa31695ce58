package service

import (
	"context"
	"fmt"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/repository/dao"
	redisrepo "go-crmhub/internal/repository/redis"
	"go-crmhub/internal/security/jwt"
	"go-crmhub/pkg/crypto"

	"github.com/google/uuid"
)

type AuthService struct {
	Users     *dao.UserDAO
	Tenants   *dao.TenantDAO
	JWT       *jwt.Manager
	Redis     *redisrepo.Client
	JTIPrefix string
}

func NewAuthService(u *dao.UserDAO, t *dao.TenantDAO, m *jwt.Manager, r *redisrepo.Client, jtiPrefix string) *AuthService {
	if jtiPrefix == "" {
		jtiPrefix = "jwt:jti:"
	}
	return &AuthService{Users: u, Tenants: t, JWT: m, Redis: r, JTIPrefix: jtiPrefix}
}

type LoginResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	TenantID int64  `json:"tenant_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

func (s *AuthService) Login(ctx context.Context, tenantID int64, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperr.NewValidation("username", "username and password required")
	}
	t, err := s.Tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Status != 1 {
		return nil, apperr.NewValidation("tenant_id", "tenant unavailable")
	}
	u, err := s.Users.FindByUsername(ctx, tenantID, username)
	if err != nil {
		return nil, err
	}
	// 用户不存在与密码错误返回同一错误，避免枚举
	if u == nil || !crypto.VerifyPassword(password, u.Password) {
		return nil, apperr.NewValidation("password", "invalid credentials")
	}
	if u.Status != 1 {
		return nil, apperr.NewValidation("username", "account disabled")
	}
	jti := uuid.NewString()
	token, err := s.JWT.Generate(u.ID, tenantID, jti)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := s.Redis.SetTTL(ctx, s.jtiKey(u.ID, tenantID), jti, s.JWT.ExpireDuration()); err != nil {
			return nil, err
		}
	}
	return &LoginResult{Token: token, UserID: u.ID, TenantID: tenantID, Username: u.Username, Nickname: u.Nickname}, nil
}

// CheckJTI 校验 token 的 jti 是否仍是该用户最新会话
func (s *AuthService) CheckJTI(ctx context.Context, claims *jwt.Claims) bool {
	if s.Redis == nil {
		return true
	}
	return s.Redis.Get(ctx, s.jtiKey(claims.UserID, claims.TenantID)) == claims.JTI
}

func (s *AuthService) Logout(ctx context.Context, userID, tenantID int64) {
	if s.Redis != nil {
		s.Redis.Del(ctx, s.jtiKey(userID, tenantID))
	}
}

// Refresh rotates both the token and the jti, invalidating the old session.
func (s *AuthService) Refresh(ctx context.Context, claims *jwt.Claims) (string, error) {
	jti := uuid.NewString()
	token, err := s.JWT.Generate(claims.UserID, claims.TenantID, jti)
	if err != nil {
		return "", err
	}
	if s.Redis != nil {
		if err := s.Redis.SetTTL(ctx, s.jtiKey(claims.UserID, claims.TenantID), jti, s.JWT.ExpireDuration()); err != nil {
			return "", err
		}
	}
	return token, nil
}

func (s *AuthService) jtiKey(userID, tenantID int64) string {
	return fmt.Sprintf("%s%d:%d", s.JTIPrefix, tenantID, userID)
}
