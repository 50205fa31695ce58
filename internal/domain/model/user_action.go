package model

// UserAction 操作审计记录，由 Kafka 消费者落库

type UserAction struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   int64  `gorm:"column:tenant_id;index" json:"tenant_id"`
	UID        int64  `gorm:"column:uid;index" json:"uid"`
	ActionName string `gorm:"size:100" json:"action_name"`
	URL        string `gorm:"size:255" json:"url"`
	Method     string `gorm:"size:16" json:"method"`
	Status     int    `gorm:"column:status" json:"status"`
	LatencyMs  int64  `gorm:"column:latency_ms" json:"latency_ms"`
	IP         string `gorm:"size:64" json:"ip"`
	Data       string `gorm:"type:text" json:"data"`
	AddTime    int64  `gorm:"column:add_time;index" json:"add_time"`
}

func (UserAction) TableName() string { return "crm_user_action" }
