package model

// Tenant 对应 tenant 表
// status: 1 active 0 disabled

type Tenant struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"size:100;uniqueIndex:uk_tenant_name" json:"name"`
	Status     int8   `gorm:"column:status" json:"status"`
	CreateTime int64  `gorm:"column:create_time" json:"create_time"`
	UpdateTime int64  `gorm:"column:update_time" json:"update_time"`
}

func (Tenant) TableName() string { return "tenant" }
