package model

// MessageLog 模板群发的投递记录，由 dispatch 消费者落库
// status: 0 queued 1 dispatched 2 failed

type MessageLog struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64  `gorm:"column:tenant_id;index" json:"tenant_id"`
	TemplateID int64  `gorm:"column:template_id;index" json:"template_id"`
	ContactID  int64  `gorm:"column:contact_id" json:"contact_id"`
	Channel    string `gorm:"size:16" json:"channel"`
	Recipient  string `gorm:"size:128" json:"recipient"`
	Body       string `gorm:"type:text" json:"body"`
	Status     int8   `gorm:"column:status" json:"status"`
	AddTime    int64  `gorm:"column:add_time;index" json:"add_time"`
}

func (MessageLog) TableName() string { return "crm_message_log" }
