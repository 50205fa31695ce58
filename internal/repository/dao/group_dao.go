package dao

import (
	"context"
	"errors"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"

	"gorm.io/gorm"
)

type GroupDAO struct{ DB *gorm.DB }

func NewGroupDAO(db *gorm.DB) *GroupDAO { return &GroupDAO{DB: db} }

func (d *GroupDAO) FindByIDs(ctx context.Context, tenantID int64, ids []int64) (map[int64]model.Group, error) {
	res := make(map[int64]model.Group)
	if len(ids) == 0 {
		return res, nil
	}
	var list []model.Group
	if err := d.DB.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, g := range list {
		res[g.ID] = g
	}
	return res, nil
}

// FindByID returns single group (nil when absent).
func (d *GroupDAO) FindByID(ctx context.Context, tenantID, id int64) (*model.Group, error) {
	var g model.Group
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// FindByLabel 按展示名查找，同租户内唯一
func (d *GroupDAO) FindByLabel(ctx context.Context, tenantID int64, label string) (*model.Group, error) {
	var g model.Group
	if err := d.DB.WithContext(ctx).Where("tenant_id = ? AND label = ?", tenantID, label).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (d *GroupDAO) List(ctx context.Context, tenantID int64) ([]model.Group, error) {
	var list []model.Group
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *GroupDAO) Create(ctx context.Context, g *model.Group) error {
	if err := d.DB.WithContext(ctx).Create(g).Error; err != nil {
		return apperr.FromDB(err, "label")
	}
	return nil
}

// Update 用 map 更新，避免 struct Updates 跳过零值（restricted=false、remark="" 也要落库）
func (d *GroupDAO) Update(ctx context.Context, g *model.Group) error {
	if err := d.DB.WithContext(ctx).Model(&model.Group{}).
		Where("tenant_id = ? AND id = ?", g.TenantID, g.ID).
		Updates(map[string]interface{}{
			"label":       g.Label,
			"remark":      g.Remark,
			"restricted":  g.Restricted,
			"update_time": g.UpdateTime,
		}).Error; err != nil {
		return apperr.FromDB(err, "label")
	}
	return nil
}

// Delete 级联清掉组内关系行
func (d *GroupDAO) Delete(ctx context.Context, tenantID, id int64) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND group_id = ?", tenantID, id).Delete(&model.UserGroup{}).Error; err != nil {
			return err
		}
		return tx.Where("tenant_id = ?", tenantID).Delete(&model.Group{}, id).Error
	})
}

func (d *GroupDAO) UpdateStatus(ctx context.Context, tenantID, id int64, status int8) error {
	return d.DB.WithContext(ctx).Model(&model.Group{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).Update("status", status).Error
}
