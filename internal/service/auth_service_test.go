package service

import (
	"testing"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/repository/dao"
	"go-crmhub/internal/security/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) authSvc() *AuthService {
	m := jwt.NewManager("0123456789abcdef0123456789abcdef", 3600, "crmhub-test")
	return NewAuthService(f.users, dao.NewTenantDAO(f.db), m, nil, "")
}

func TestLoginIssuesToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.userSvc().CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	res, err := f.authSvc().Login(bg(), f.tid, "alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, f.tid, res.TenantID)
	assert.Equal(t, "alice", res.Username)
}

func TestLoginBadPasswordAndUnknownUserSameError(t *testing.T) {
	f := newFixture(t)
	_, err := f.userSvc().CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	svc := f.authSvc()

	// 密码错与用户不存在返回同一错误，避免枚举
	_, errBad := svc.Login(bg(), f.tid, "alice", "wrong")
	_, errMissing := svc.Login(bg(), f.tid, "nobody", "wrong")
	require.Error(t, errBad)
	require.Error(t, errMissing)
	assert.True(t, apperr.IsValidation(errBad))
	assert.Equal(t, errBad.Error(), errMissing.Error())
}

func TestLoginUnknownTenantRejected(t *testing.T) {
	f := newFixture(t)
	_, err := f.authSvc().Login(bg(), 9999, "alice", "secret123")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}
