package model

// UserGroup 用户与组的多对多关系，一行一条关系
// (user_id, group_id, tenant_id) 复合唯一；外键级联删除
// 读取顺序按插入顺序（id ASC），见 MembershipDAO.ListGroupIDsByUser

type UserGroup struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID  int64 `gorm:"column:tenant_id;uniqueIndex:uk_user_group_tenant" json:"tenant_id"`
	UserID    int64 `gorm:"column:user_id;uniqueIndex:uk_user_group_tenant;index" json:"user_id"`
	GroupID   int64 `gorm:"column:group_id;uniqueIndex:uk_user_group_tenant;index" json:"group_id"`
	CreatedAt int64 `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"group,omitempty"`
}

func (UserGroup) TableName() string { return "crm_user_group" }
