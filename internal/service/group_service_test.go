package service

import (
	"testing"

	"go-crmhub/internal/domain/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupAddRequiresLabel(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()

	_, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestGroupAddDuplicateLabel(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()

	_, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.NoError(t, err)
	_, err = svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
}

func TestGroupListCachesAndInvalidates(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()

	res, err := svc.List(bg(), f.tid)
	require.NoError(t, err)
	assert.Empty(t, res)

	// the empty result is sentinel-cached; Add must invalidate it
	id, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.NoError(t, err)
	res, err = svc.List(bg(), f.tid)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, id, res[0].ID)
	assert.Equal(t, "sales", res[0].Label)
}

func TestGroupEditPersistsZeroValues(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()

	gid, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales", Remark: "vip only", Restricted: true})
	require.NoError(t, err)

	// 显式置空/置 false 也必须落库，不能被跳过
	emptyRemark := ""
	open := false
	require.NoError(t, svc.Edit(bg(), EditGroupParams{TenantID: f.tid, ID: gid, Remark: &emptyRemark, Restricted: &open}))

	g, err := f.grps.FindByID(bg(), f.tid, gid)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.False(t, g.Restricted)
	assert.Empty(t, g.Remark)
	assert.Equal(t, "sales", g.Label) // 未提交的字段保持原值
}

func TestGroupEditNilPointersKeepFields(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()

	gid, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales", Remark: "vip only", Restricted: true})
	require.NoError(t, err)

	require.NoError(t, svc.Edit(bg(), EditGroupParams{TenantID: f.tid, ID: gid, Label: "enterprise"}))

	g, err := f.grps.FindByID(bg(), f.tid, gid)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "enterprise", g.Label)
	assert.True(t, g.Restricted)
	assert.Equal(t, "vip only", g.Remark)
}

func TestAddMemberForgivingVsStrict(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()
	usvc := f.userSvc()

	gid, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.NoError(t, err)
	uid, err := usvc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	// strict create succeeds once, errors on the second identical call
	rel, err := svc.CreateMembership(bg(), f.tid, gid, uid)
	require.NoError(t, err)
	require.NotZero(t, rel.ID)
	_, err = svc.CreateMembership(bg(), f.tid, gid, uid)
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))

	// forgiving add is idempotent and returns the existing row
	got, err := svc.AddMember(bg(), f.tid, gid, uid)
	require.NoError(t, err)
	assert.Equal(t, rel.ID, got.ID)
}

func TestAddMemberUnknownGroupOrUser(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()
	usvc := f.userSvc()

	uid, err := usvc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.AddMember(bg(), f.tid, 9999, uid)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	gid, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.NoError(t, err)
	_, err = svc.AddMember(bg(), f.tid, gid, 9999)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestMembersInJoinOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()
	usvc := f.userSvc()

	gid, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.NoError(t, err)
	alice, err := usvc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	bob, err := usvc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "bob", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.AddMember(bg(), f.tid, gid, bob)
	require.NoError(t, err)
	_, err = svc.AddMember(bg(), f.tid, gid, alice)
	require.NoError(t, err)

	members, err := svc.Members(bg(), f.tid, gid)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, bob, members[0].UserID)
	assert.Equal(t, alice, members[1].UserID)
	assert.Positive(t, members[0].JoinedAt) // unix 秒
}

func TestGroupDeleteCascadesMemberships(t *testing.T) {
	f := newFixture(t)
	svc := f.groupSvc()
	usvc := f.userSvc()

	gid, err := svc.Add(bg(), AddGroupParams{TenantID: f.tid, Label: "sales"})
	require.NoError(t, err)
	uid, err := usvc.CreateUser(bg(), CreateUserParams{TenantID: f.tid, Username: "alice", Password: "secret123", GroupIDs: []int64{gid}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(bg(), f.tid, gid))
	gids, err := usvc.GroupsOfUser(bg(), f.tid, uid)
	require.NoError(t, err)
	assert.Empty(t, gids)
}
