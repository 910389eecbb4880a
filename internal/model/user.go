package model

import "github.com/papyrus-notes/table-engine/pkg/timex"

const TableNameUser = "user"

// User 引擎只消费权限判定需要的最小用户信息；凭证管理在宿主侧。
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid" form:"uid"`
	Username  string     `gorm:"column:username;not null" json:"username" form:"username"`
	Email     string     `gorm:"column:email" json:"email" form:"email"`
	IsAdmin   bool       `gorm:"column:is_admin;default:false" json:"isAdmin" form:"isAdmin"` // 全局管理角色，粗粒度兜底
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}
