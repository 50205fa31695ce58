package dao

import (
	"context"

	"go-crmhub/internal/domain/model"

	"gorm.io/gorm"
)

type UserActionDAO struct{ DB *gorm.DB }

func NewUserActionDAO(db *gorm.DB) *UserActionDAO { return &UserActionDAO{DB: db} }

func (d *UserActionDAO) List(ctx context.Context, tenantID int64, typ int, keywords string, page, limit int) ([]model.UserAction, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	q := d.DB.WithContext(ctx).Model(&model.UserAction{}).Where("tenant_id = ?", tenantID)
	if typ > 0 && keywords != "" {
		switch typ { // 1=url 2=action_name 3=uid
		case 1:
			q = q.Where("url LIKE ?", "%"+keywords+"%")
		case 2:
			q = q.Where("action_name LIKE ?", "%"+keywords+"%")
		case 3:
			q = q.Where("uid = ?", keywords)
		}
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.UserAction
	if err := q.Order("add_time DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (d *UserActionDAO) Delete(ctx context.Context, tenantID, id int64) error {
	return d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.UserAction{}, id).Error
}
