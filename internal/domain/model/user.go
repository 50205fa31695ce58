package model

import "time"

// User 对应 crm_user 表，按租户隔离
// username 在同一租户内唯一

type User struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64     `gorm:"column:tenant_id;uniqueIndex:uk_tenant_username;index" json:"tenant_id"`
	Username   string    `gorm:"size:64;uniqueIndex:uk_tenant_username" json:"username"`
	Nickname   string    `gorm:"size:64" json:"nickname"`
	Password   string    `gorm:"size:64" json:"-"`
	CreateTime int64     `gorm:"column:create_time;index" json:"create_time"`
	UpdateTime int64     `gorm:"column:update_time" json:"update_time"`
	Status     int8      `gorm:"column:status" json:"status"`
	CreatedAt  time.Time `gorm:"->:false;<-:false" json:"-"`
	UpdatedAt  time.Time `gorm:"->:false;<-:false" json:"-"`
}

func (User) TableName() string { return "crm_user" }
