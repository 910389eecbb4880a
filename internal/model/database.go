package model

import "github.com/papyrus-notes/table-engine/pkg/timex"

const TableNameDatabase = "database"

// Database 表格容器：一组列与行，归属某个用户或公开
type Database struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Name       string     `gorm:"column:name;not null" json:"name" form:"name"`
	OwnerUID   *int64     `gorm:"column:owner_uid;index:idx_database_owner" json:"ownerUid" form:"ownerUid"` // nil 表示公开
	IsCalendar bool       `gorm:"column:is_calendar;default:false" json:"isCalendar" form:"isCalendar"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;type:datetime" json:"updatedAt" form:"updatedAt"`
}

// TableName Database's table name
func (*Database) TableName() string {
	return TableNameDatabase
}
