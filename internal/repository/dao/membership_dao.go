package dao

import (
	"context"
	"errors"
	"fmt"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipDAO handles the user/group join table.
type MembershipDAO struct{ DB *gorm.DB }

func NewMembershipDAO(db *gorm.DB) *MembershipDAO { return &MembershipDAO{DB: db} }

func (d *MembershipDAO) tracer() trace.Tracer {
	return otel.Tracer("dao.membership")
}

// ListGroupIDsByUser returns group ids for a user within a tenant,
// in insertion order (id ASC). The order is a contract relied on by list
// endpoints, not an accident of the default query plan.
func (d *MembershipDAO) ListGroupIDsByUser(ctx context.Context, tenantID, userID int64) ([]int64, error) {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.ListGroupIDsByUser")
	defer span.End()
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.UserGroup{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("id ASC").Pluck("group_id", &ids).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list group ids by user uid=%d: %w", userID, err)
	}
	return ids, nil
}

// ListGroupIDsByUsers bulk load relations for multiple users.
func (d *MembershipDAO) ListGroupIDsByUsers(ctx context.Context, tenantID int64, userIDs []int64) (map[int64][]int64, error) {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.ListGroupIDsByUsers")
	defer span.End()
	res := make(map[int64][]int64)
	if len(userIDs) == 0 {
		return res, nil
	}
	var rows []model.UserGroup
	if err := d.DB.WithContext(ctx).
		Where("tenant_id = ? AND user_id IN ?", tenantID, userIDs).
		Order("id ASC").Find(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list group ids by users: %w", err)
	}
	for _, r := range rows {
		res[r.UserID] = append(res[r.UserID], r.GroupID)
	}
	return res, nil
}

// ListUserIDsByGroup returns user ids in a group.
func (d *MembershipDAO) ListUserIDsByGroup(ctx context.Context, tenantID, groupID int64) ([]int64, error) {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.ListUserIDsByGroup")
	defer span.End()
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.UserGroup{}).
		Where("tenant_id = ? AND group_id = ?", tenantID, groupID).
		Order("id ASC").Pluck("user_id", &ids).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list user ids by group gid=%d: %w", groupID, err)
	}
	return ids, nil
}

// ListMembers 列出组内关系行
func (d *MembershipDAO) ListMembers(ctx context.Context, tenantID, groupID int64) ([]model.UserGroup, error) {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.ListMembers")
	defer span.End()
	var rows []model.UserGroup
	if err := d.DB.WithContext(ctx).
		Where("tenant_id = ? AND group_id = ?", tenantID, groupID).
		Order("id ASC").Find(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list members gid=%d: %w", groupID, err)
	}
	return rows, nil
}

// Create is the strict insert path: a duplicate (user, group, tenant) pair
// surfaces as a ConstraintViolation instead of being swallowed.
func (d *MembershipDAO) Create(ctx context.Context, rel *model.UserGroup) error {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(rel).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return apperr.FromDB(err, "user_id/group_id")
	}
	return nil
}

// GetOrCreate is the forgiving add path: adding a user to a group they already
// belong to returns the existing row. Insert uses ON CONFLICT DO NOTHING so
// two concurrent adds never surface a duplicate error.
func (d *MembershipDAO) GetOrCreate(ctx context.Context, tenantID, userID, groupID int64) (*model.UserGroup, error) {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.GetOrCreate")
	defer span.End()
	rel := &model.UserGroup{TenantID: tenantID, UserID: userID, GroupID: groupID}
	if err := d.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}, {Name: "tenant_id"}},
			DoNothing: true,
		}).Create(rel).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperr.FromDB(err, "user_id/group_id")
	}
	// Conflict leaves rel.ID zero; fetch the persisted row either way.
	var out model.UserGroup
	if err := d.DB.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND group_id = ?", tenantID, userID, groupID).
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFound{Entity: "membership", ID: groupID}
		}
		return nil, err
	}
	return &out, nil
}

// Reconcile converges the persisted membership set of one user to the desired
// group id set: insert desired-current, delete current-desired. tx must be an
// open transaction so both batches commit atomically; inserts use
// ON CONFLICT DO NOTHING so concurrent identical calls stay idempotent and the
// last committing writer wins deterministically.
func (d *MembershipDAO) Reconcile(ctx context.Context, tx *gorm.DB, tenantID, userID int64, desired []int64) error {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.Reconcile")
	defer span.End()
	if tx == nil {
		tx = d.DB
	}

	var current []int64
	if err := tx.WithContext(ctx).Model(&model.UserGroup{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Pluck("group_id", &current).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("reconcile (read current) uid=%d: %w", userID, err)
	}

	want := make(map[int64]struct{}, len(desired))
	for _, gid := range desired {
		if gid > 0 { // duplicates and junk ids collapse here; input is a set
			want[gid] = struct{}{}
		}
	}
	have := make(map[int64]struct{}, len(current))
	for _, gid := range current {
		have[gid] = struct{}{}
	}

	toAdd := make([]model.UserGroup, 0, len(want))
	seen := make(map[int64]struct{}, len(want))
	for _, gid := range desired { // caller order kept so insertion ids are stable
		if _, ok := want[gid]; !ok {
			continue
		}
		if _, dup := seen[gid]; dup {
			continue
		}
		seen[gid] = struct{}{}
		if _, ok := have[gid]; !ok {
			toAdd = append(toAdd, model.UserGroup{TenantID: tenantID, UserID: userID, GroupID: gid})
		}
	}
	toRemove := make([]int64, 0)
	for _, gid := range current {
		if _, ok := want[gid]; !ok {
			toRemove = append(toRemove, gid)
		}
	}

	if len(toAdd) > 0 {
		if err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}, {Name: "tenant_id"}},
				DoNothing: true,
			}).Create(&toAdd).Error; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return apperr.FromDB(fmt.Errorf("reconcile (insert) uid=%d: %w", userID, err), "group_id")
		}
	}
	if len(toRemove) > 0 {
		if err := tx.WithContext(ctx).
			Where("tenant_id = ? AND user_id = ? AND group_id IN ?", tenantID, userID, toRemove).
			Delete(&model.UserGroup{}).Error; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("reconcile (delete) uid=%d: %w", userID, err)
		}
	}
	metrics.MembershipReconcileWrites.WithLabelValues("add").Observe(float64(len(toAdd)))
	metrics.MembershipReconcileWrites.WithLabelValues("remove").Observe(float64(len(toRemove)))
	return nil
}

// DeleteMember removes one user from one group.
func (d *MembershipDAO) DeleteMember(ctx context.Context, tenantID, groupID, userID int64) error {
	ctx, span := d.tracer().Start(ctx, "MembershipDAO.DeleteMember")
	defer span.End()
	if err := d.DB.WithContext(ctx).
		Where("tenant_id = ? AND group_id = ? AND user_id = ?", tenantID, groupID, userID).
		Delete(&model.UserGroup{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete member gid=%d uid=%d: %w", groupID, userID, err)
	}
	return nil
}
