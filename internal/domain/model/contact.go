package model

// Contact 对应 crm_contact 表
// attrs 为模板渲染用的自定义键值 (JSON 文本)

type Contact struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64  `gorm:"column:tenant_id;index" json:"tenant_id"`
	Name       string `gorm:"size:100" json:"name"`
	Phone      string `gorm:"size:32;index" json:"phone"`
	Email      string `gorm:"size:128" json:"email"`
	Attrs      string `gorm:"type:text" json:"attrs"`
	Status     int8   `gorm:"column:status" json:"status"`
	CreateTime int64  `gorm:"column:create_time" json:"create_time"`
	UpdateTime int64  `gorm:"column:update_time" json:"update_time"`
}

func (Contact) TableName() string { return "crm_contact" }
