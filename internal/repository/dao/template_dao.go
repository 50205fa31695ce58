package dao

import (
	"context"
	"errors"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"

	"gorm.io/gorm"
)

type TemplateDAO struct{ DB *gorm.DB }

func NewTemplateDAO(db *gorm.DB) *TemplateDAO { return &TemplateDAO{DB: db} }

func (d *TemplateDAO) FindByID(ctx context.Context, tenantID, id int64) (*model.MessageTemplate, error) {
	var t model.MessageTemplate
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (d *TemplateDAO) List(ctx context.Context, tenantID int64) ([]model.MessageTemplate, error) {
	var list []model.MessageTemplate
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *TemplateDAO) Create(ctx context.Context, t *model.MessageTemplate) error {
	if err := d.DB.WithContext(ctx).Create(t).Error; err != nil {
		return apperr.FromDB(err, "name")
	}
	return nil
}

// Update 用 map 更新，零值（如清空 body）也要落库
func (d *TemplateDAO) Update(ctx context.Context, t *model.MessageTemplate) error {
	if err := d.DB.WithContext(ctx).Model(&model.MessageTemplate{}).
		Where("tenant_id = ? AND id = ?", t.TenantID, t.ID).
		Updates(map[string]interface{}{
			"name":        t.Name,
			"body":        t.Body,
			"channel":     t.Channel,
			"update_time": t.UpdateTime,
		}).Error; err != nil {
		return apperr.FromDB(err, "name")
	}
	return nil
}

func (d *TemplateDAO) Delete(ctx context.Context, tenantID, id int64) error {
	return d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.MessageTemplate{}, id).Error
}

func (d *TemplateDAO) UpdateStatus(ctx context.Context, tenantID, id int64, status int8) error {
	return d.DB.WithContext(ctx).Model(&model.MessageTemplate{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).Update("status", status).Error
}
