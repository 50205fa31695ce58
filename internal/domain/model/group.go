package model

// Group 对应 crm_group 表
// label 在同一租户内唯一; restricted 标记受限组（仅管理员可加成员）

type Group struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64  `gorm:"column:tenant_id;uniqueIndex:uk_tenant_label;index" json:"tenant_id"`
	Label      string `gorm:"size:100;uniqueIndex:uk_tenant_label" json:"label"`
	Remark     string `gorm:"column:remark;type:text" json:"remark"`
	Restricted bool   `gorm:"column:restricted" json:"restricted"`
	Status     int8   `gorm:"column:status" json:"status"`
	CreateTime int64  `gorm:"column:create_time" json:"create_time"`
	UpdateTime int64  `gorm:"column:update_time" json:"update_time"`
}

func (Group) TableName() string { return "crm_group" }
