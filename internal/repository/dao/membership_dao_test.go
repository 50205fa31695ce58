package dao

import (
	"sync"
	"testing"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileConverges(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")
	c := seedGroup(t, db, tid, "c")

	cases := []struct {
		name    string
		initial []int64
		desired []int64
	}{
		{"from empty", nil, []int64{a, b}},
		{"superset", []int64{a}, []int64{a, b, c}},
		{"subset", []int64{a, b, c}, []int64{b}},
		{"disjoint", []int64{a}, []int64{b, c}},
		{"equal", []int64{a, b}, []int64{a, b}},
		{"clear all", []int64{a, b, c}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, tc.initial))
			require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, tc.desired))
			got, err := d.ListGroupIDsByUser(ctxT(), tid, uid)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.desired, got)
		})
	}
}

func TestReconcileDuplicatesInInputCollapse(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")

	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{a, a, b, a}))
	got, err := d.ListGroupIDsByUser(ctxT(), tid, uid)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, got)
}

func TestReconcileStampsCreatedAt(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")

	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{a}))
	var rows []model.UserGroup
	require.NoError(t, db.Where("tenant_id = ? AND user_id = ?", tid, uid).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Positive(t, rows[0].CreatedAt) // autoCreateTime 填 unix 秒
}

func TestReconcileNoOpKeepsRows(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")

	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{a, b}))
	var before []model.UserGroup
	require.NoError(t, db.Order("id ASC").Find(&before).Error)

	// same target set again: existing rows must survive untouched
	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{b, a}))
	var after []model.UserGroup
	require.NoError(t, db.Order("id ASC").Find(&after).Error)
	require.Len(t, after, 2)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[1].ID, after[1].ID)
}

func TestReconcilePreservesInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")
	c := seedGroup(t, db, tid, "c")

	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{a, b}))
	// a survives with its original row, c is appended after it
	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{a, c}))
	got, err := d.ListGroupIDsByUser(ctxT(), tid, uid)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, c}, got)
}

func TestReconcileScopedToTenantAndUser(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	alice := seedUser(t, db, tid, "alice")
	bob := seedUser(t, db, tid, "bob")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")

	require.NoError(t, d.Reconcile(ctxT(), db, tid, alice, []int64{a, b}))
	require.NoError(t, d.Reconcile(ctxT(), db, tid, bob, []int64{a}))

	// clearing alice must not touch bob
	require.NoError(t, d.Reconcile(ctxT(), db, tid, alice, nil))
	gotAlice, err := d.ListGroupIDsByUser(ctxT(), tid, alice)
	require.NoError(t, err)
	assert.Empty(t, gotAlice)
	gotBob, err := d.ListGroupIDsByUser(ctxT(), tid, bob)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, gotBob)
}

func TestReconcileInsideRolledBackTx(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")

	require.NoError(t, d.Reconcile(ctxT(), db, tid, uid, []int64{a}))

	tx := db.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, d.Reconcile(ctxT(), tx, tid, uid, []int64{b}))
	require.NoError(t, tx.Rollback().Error)

	// rollback must leave the prior state: neither the add nor the remove landed
	got, err := d.ListGroupIDsByUser(ctxT(), tid, uid)
	require.NoError(t, err)
	assert.Equal(t, []int64{a}, got)
}

func TestReconcileConcurrentIdenticalCalls(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")
	b := seedGroup(t, db, tid, "b")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- d.Reconcile(ctxT(), db, tid, uid, []int64{a, b})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	got, err := d.ListGroupIDsByUser(ctxT(), tid, uid)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{a, b}, got)

	var count int64
	require.NoError(t, db.Model(&model.UserGroup{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCreateStrictDuplicateIsConstraintViolation(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")

	require.NoError(t, d.Create(ctxT(), &model.UserGroup{TenantID: tid, UserID: uid, GroupID: a}))
	err := d.Create(ctxT(), &model.UserGroup{TenantID: tid, UserID: uid, GroupID: a})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
}

func TestGetOrCreateForgiving(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")

	first, err := d.GetOrCreate(ctxT(), tid, uid, a)
	require.NoError(t, err)
	second, err := d.GetOrCreate(ctxT(), tid, uid, a)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&model.UserGroup{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteMember(t *testing.T) {
	db := newTestDB(t)
	d := NewMembershipDAO(db)
	tid := seedTenant(t, db)
	uid := seedUser(t, db, tid, "alice")
	a := seedGroup(t, db, tid, "a")

	_, err := d.GetOrCreate(ctxT(), tid, uid, a)
	require.NoError(t, err)
	require.NoError(t, d.DeleteMember(ctxT(), tid, a, uid))
	got, err := d.ListGroupIDsByUser(ctxT(), tid, uid)
	require.NoError(t, err)
	assert.Empty(t, got)

	// deleting an absent pair is a no-op, not an error
	require.NoError(t, d.DeleteMember(ctxT(), tid, a, uid))
}
