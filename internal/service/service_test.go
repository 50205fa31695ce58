package service

import (
	"context"
	"testing"
	"time"

	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/repository/dao"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db    *gorm.DB
	users *dao.UserDAO
	grps  *dao.GroupDAO
	rel   *dao.MembershipDAO
	tid   int64
}

func newFixture(t *testing.T) *fixture {
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
	tn := &model.Tenant{Name: "acme", Status: 1, CreateTime: time.Now().Unix()}
	require.NoError(t, db.Create(tn).Error)
	return &fixture{
		db:    db,
		users: dao.NewUserDAO(db),
		grps:  dao.NewGroupDAO(db),
		rel:   dao.NewMembershipDAO(db),
		tid:   tn.ID,
	}
}

func (f *fixture) userSvc() *UserService {
	return NewUserService(f.users, f.grps, f.rel, f.db)
}

func (f *fixture) groupSvc() *GroupService {
	return NewGroupService(f.grps, f.users, f.rel, f.db)
}

func (f *fixture) addGroup(t *testing.T, label string) int64 {
	t.Helper()
	g := &model.Group{TenantID: f.tid, Label: label, Status: 1, CreateTime: time.Now().Unix()}
	require.NoError(t, f.db.Create(g).Error)
	return g.ID
}

func bg() context.Context { return context.Background() }
