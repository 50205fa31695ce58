package service

import (
	"testing"

	"go-crmhub/internal/domain/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserWithGroups(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()
	a := f.addGroup(t, "sales")
	b := f.addGroup(t, "support")

	id, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", Nickname: "Alice", GroupIDs: []int64{a, b}})
	require.NoError(t, err)
	require.NotZero(t, id)

	gids, err := svc.GroupsOfUser(bg(), f.tid, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, gids)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()

	_, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	_, err = svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "other456"})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
}

func TestCreateUserUnknownGroupRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()

	_, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", GroupIDs: []int64{9999}})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	// the failed transaction must not leave a half-created user behind
	u, err := f.users.FindByUsername(bg(), f.tid, "alice")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestReconcileGroupsService(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()
	a := f.addGroup(t, "sales")
	b := f.addGroup(t, "support")
	c := f.addGroup(t, "vip")

	id, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", GroupIDs: []int64{a, b}})
	require.NoError(t, err)

	require.NoError(t, svc.ReconcileGroups(bg(), f.tid, id, []int64{b, c}))
	gids, err := svc.GroupsOfUser(bg(), f.tid, id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{b, c}, gids)

	// empty set clears everything
	require.NoError(t, svc.ReconcileGroups(bg(), f.tid, id, nil))
	gids, err = svc.GroupsOfUser(bg(), f.tid, id)
	require.NoError(t, err)
	assert.Empty(t, gids)
}

func TestReconcileGroupsUnknownUser(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()
	a := f.addGroup(t, "sales")

	err := svc.ReconcileGroups(bg(), f.tid, 424242, []int64{a})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestEditUserNilGroupIDsKeepsMemberships(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()
	a := f.addGroup(t, "sales")

	id, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", GroupIDs: []int64{a}})
	require.NoError(t, err)

	require.NoError(t, svc.EditUser(bg(), EditUserParams{TenantID: f.tid, ID: id, Nickname: "Alice2"}))
	gids, err := svc.GroupsOfUser(bg(), f.tid, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, gids)

	// empty (non-nil) slice clears
	require.NoError(t, svc.EditUser(bg(), EditUserParams{TenantID: f.tid, ID: id, GroupIDs: []int64{}}))
	gids, err = svc.GroupsOfUser(bg(), f.tid, id)
	require.NoError(t, err)
	assert.Empty(t, gids)
}

func TestDeleteUserClearsMemberships(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()
	a := f.addGroup(t, "sales")

	id, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", GroupIDs: []int64{a}})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(bg(), f.tid, id))

	uids, err := f.rel.ListUserIDsByGroup(bg(), f.tid, a)
	require.NoError(t, err)
	assert.Empty(t, uids)
}

func TestListUsersIncludesGroupLabels(t *testing.T) {
	f := newFixture(t)
	svc := f.userSvc()
	svc.ListC = nil // exercise the uncached path directly
	a := f.addGroup(t, "sales")

	_, err := svc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", GroupIDs: []int64{a}})
	require.NoError(t, err)

	res, err := svc.ListUsers(bg(), ListUsersParams{TenantID: f.tid, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	require.Len(t, res.List, 1)
	require.Len(t, res.List[0].Groups, 1)
	assert.Equal(t, "sales", res.List[0].Groups[0].Label)
}
