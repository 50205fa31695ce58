package dao

import (
	"context"
	"testing"
	"time"

	"go-crmhub/internal/domain/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Group{},
		&model.UserGroup{},
		&model.Contact{},
		&model.MessageTemplate{},
		&model.UserAction{},
		&model.MessageLog{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	tn := &model.Tenant{Name: "acme", Status: 1, CreateTime: time.Now().Unix()}
	require.NoError(t, db.Create(tn).Error)
	return tn.ID
}

func seedUser(t *testing.T, db *gorm.DB, tenantID int64, name string) int64 {
	t.Helper()
	u := &model.User{TenantID: tenantID, Username: name, Password: "x", Status: 1, CreateTime: time.Now().Unix()}
	require.NoError(t, db.Create(u).Error)
	return u.ID
}

func seedGroup(t *testing.T, db *gorm.DB, tenantID int64, label string) int64 {
	t.Helper()
	g := &model.Group{TenantID: tenantID, Label: label, Status: 1, CreateTime: time.Now().Unix()}
	require.NoError(t, db.Create(g).Error)
	return g.ID
}

func ctxT() context.Context { return context.Background() }
