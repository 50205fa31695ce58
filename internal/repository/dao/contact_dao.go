package dao

import (
	"context"
	"errors"

	"go-crmhub/internal/domain/model"

	"gorm.io/gorm"
)

type ContactDAO struct{ DB *gorm.DB }

func NewContactDAO(db *gorm.DB) *ContactDAO { return &ContactDAO{DB: db} }

func (d *ContactDAO) FindByID(ctx context.Context, tenantID, id int64) (*model.Contact, error) {
	var c model.Contact
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (d *ContactDAO) FindByIDs(ctx context.Context, tenantID int64, ids []int64) ([]model.Contact, error) {
	if len(ids) == 0 {
		return []model.Contact{}, nil
	}
	var list []model.Contact
	if err := d.DB.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// List with optional name/phone filters & pagination.
func (d *ContactDAO) List(ctx context.Context, tenantID int64, name, phone string, offset, limit int) ([]model.Contact, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.Contact{}).Where("tenant_id = ?", tenantID)
	if name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}
	if phone != "" {
		q = q.Where("phone LIKE ?", phone+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 500 {
		limit = 20
	}
	var list []model.Contact
	if err := q.Offset(offset).Limit(limit).Order("id DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (d *ContactDAO) Create(ctx context.Context, c *model.Contact) error {
	return d.DB.WithContext(ctx).Create(c).Error
}

// Update 用 map 更新，零值（如清空 phone/attrs）也要落库
func (d *ContactDAO) Update(ctx context.Context, c *model.Contact) error {
	return d.DB.WithContext(ctx).Model(&model.Contact{}).
		Where("tenant_id = ? AND id = ?", c.TenantID, c.ID).
		Updates(map[string]interface{}{
			"name":        c.Name,
			"phone":       c.Phone,
			"email":       c.Email,
			"attrs":       c.Attrs,
			"update_time": c.UpdateTime,
		}).Error
}

func (d *ContactDAO) Delete(ctx context.Context, tenantID, id int64) error {
	return d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.Contact{}, id).Error
}
