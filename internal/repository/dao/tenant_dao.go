package dao

import (
	"context"
	"errors"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"

	"gorm.io/gorm"
)

type TenantDAO struct{ DB *gorm.DB }

func NewTenantDAO(db *gorm.DB) *TenantDAO { return &TenantDAO{DB: db} }

func (d *TenantDAO) FindByID(ctx context.Context, id int64) (*model.Tenant, error) {
	var t model.Tenant
	if err := d.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (d *TenantDAO) FindByName(ctx context.Context, name string) (*model.Tenant, error) {
	var t model.Tenant
	if err := d.DB.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (d *TenantDAO) List(ctx context.Context) ([]model.Tenant, error) {
	var list []model.Tenant
	if err := d.DB.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (d *TenantDAO) Create(ctx context.Context, t *model.Tenant) error {
	if err := d.DB.WithContext(ctx).Create(t).Error; err != nil {
		return apperr.FromDB(err, "name")
	}
	return nil
}

func (d *TenantDAO) UpdateStatus(ctx context.Context, id int64, status int8) error {
	return d.DB.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Update("status", status).Error
}
