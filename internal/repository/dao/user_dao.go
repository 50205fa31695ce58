package dao

import (
	"context"
	"errors"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"

	"gorm.io/gorm"
)

// UserDAO is a data access object for tenant users.
type UserDAO struct {
	DB *gorm.DB
}

// NewUserDAO creates a new UserDAO.
func NewUserDAO(db *gorm.DB) *UserDAO { return &UserDAO{DB: db} }

// WithTx returns a DAO bound to the given transaction (or same instance if tx nil).
func (d *UserDAO) WithTx(tx *gorm.DB) *UserDAO {
	if tx == nil {
		return d
	}
	return &UserDAO{DB: tx}
}

// FindByUsername finds a user by username within a tenant.
func (d *UserDAO) FindByUsername(ctx context.Context, tenantID int64, username string) (*model.User, error) {
	var u model.User
	if err := d.DB.WithContext(ctx).Where("tenant_id = ? AND username = ?", tenantID, username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindByID finds a user by primary id within a tenant.
func (d *UserDAO) FindByID(ctx context.Context, tenantID, id int64) (*model.User, error) {
	var u model.User
	if err := d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// FindByIDs batch fetch users.
func (d *UserDAO) FindByIDs(ctx context.Context, tenantID int64, ids []int64) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var list []model.User
	if err := d.DB.WithContext(ctx).Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Create inserts a new user record. Duplicate username maps to ConstraintViolation.
func (d *UserDAO) Create(ctx context.Context, u *model.User) error {
	if err := d.DB.WithContext(ctx).Create(u).Error; err != nil {
		return apperr.FromDB(err, "username")
	}
	return nil
}

// Delete physical delete; membership rows follow via FK cascade.
func (d *UserDAO) Delete(ctx context.Context, tenantID, id int64) error {
	return d.DB.WithContext(ctx).Where("tenant_id = ?", tenantID).Delete(&model.User{}, id).Error
}

// Update updates basic editable fields.
func (d *UserDAO) Update(ctx context.Context, u *model.User) error {
	return d.DB.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ? AND id = ?", u.TenantID, u.ID).
		Updates(map[string]interface{}{
			"nickname":    u.Nickname,
			"status":      u.Status,
			"update_time": u.UpdateTime,
		}).Error
}

// UpdatePassword updates the password (expects an already hashed value).
func (d *UserDAO) UpdatePassword(ctx context.Context, tenantID, id int64, newPwd string) error {
	return d.DB.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).Update("password", newPwd).Error
}

// UpdateStatus updates the status flag.
func (d *UserDAO) UpdateStatus(ctx context.Context, tenantID, id int64, status int8) error {
	return d.DB.WithContext(ctx).Model(&model.User{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).Update("status", status).Error
}

// List returns users with optional filters & pagination. If limit<=0 returns all (capped at 500).
func (d *UserDAO) List(ctx context.Context, tenantID int64, username string, status *int8, offset, limit int) ([]model.User, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.User{}).Where("tenant_id = ?", tenantID)
	if username != "" {
		q = q.Where("username LIKE ?", "%"+username+"%")
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.User
	if err := q.Offset(offset).Limit(limit).Order("id DESC").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
