package model

import "github.com/papyrus-notes/table-engine/pkg/timex"

const TableNameRow = "row"

// Row 数据表中的一行。软删除通过 deleted_at/deleted_by 标记，恢复时显式清空。
type Row struct {
	ID             int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	DatabaseID     int64       `gorm:"column:database_id;not null;index:idx_row_database" json:"databaseId" form:"databaseId"`
	Position       int64       `gorm:"column:position;not null" json:"position" form:"position"`
	RecurrenceRule string      `gorm:"column:recurrence_rule" json:"recurrenceRule" form:"recurrenceRule"`
	DeletedAt      *timex.Time `gorm:"column:deleted_at;type:datetime" json:"deletedAt" form:"deletedAt"`
	DeletedBy      int64       `gorm:"column:deleted_by" json:"deletedBy" form:"deletedBy"`
	CreatedAt      timex.Time  `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
	UpdatedAt      timex.Time  `gorm:"column:updated_at;type:datetime" json:"updatedAt" form:"updatedAt"`
}

// TableName Row's table name
func (*Row) TableName() string {
	return TableNameRow
}

// IsDeleted 判断行是否处于软删除状态
func (r *Row) IsDeleted() bool {
	return r.DeletedAt != nil
}
