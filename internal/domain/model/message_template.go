package model

// MessageTemplate 对应 crm_message_template 表
// body 中使用 {{var}} 占位符; channel: sms / email

type MessageTemplate struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64  `gorm:"column:tenant_id;uniqueIndex:uk_tenant_tpl_name;index" json:"tenant_id"`
	Name       string `gorm:"size:100;uniqueIndex:uk_tenant_tpl_name" json:"name"`
	Body       string `gorm:"type:text" json:"body"`
	Channel    string `gorm:"size:16" json:"channel"`
	Status     int8   `gorm:"column:status" json:"status"`
	CreateTime int64  `gorm:"column:create_time" json:"create_time"`
	UpdateTime int64  `gorm:"column:update_time" json:"update_time"`
}

func (MessageTemplate) TableName() string { return "crm_message_template" }
