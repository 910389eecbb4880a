package model

import "github.com/papyrus-notes/table-engine/pkg/timex"

// HistoryEntity 历史快照归属的实体种类
type HistoryEntity string

const (
	HistoryRow  HistoryEntity = "row"
	HistoryNote HistoryEntity = "note"
)

const TableNameHistorySnapshot = "history_snapshot"

// HistorySnapshot 单次变更的前后状态快照。仅追加，版本号按实体严格递增。
type HistorySnapshot struct {
	ID            int64         `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	EntityType    HistoryEntity `gorm:"column:entity_type;not null;uniqueIndex:idx_history_entity_version,priority:1" json:"entityType" form:"entityType"`
	EntityID      int64         `gorm:"column:entity_id;not null;uniqueIndex:idx_history_entity_version,priority:2" json:"entityId" form:"entityId"`
	Version       int64         `gorm:"column:version;not null;uniqueIndex:idx_history_entity_version,priority:3" json:"version" form:"version"`
	Before        string        `gorm:"column:before_state" json:"before" form:"before"`                 // JSON
	After         string        `gorm:"column:after_state" json:"after" form:"after"`                    // JSON
	ChangedFields string        `gorm:"column:changed_fields" json:"changedFields" form:"changedFields"` // JSON 数组
	AuthorUID     int64         `gorm:"column:author_uid" json:"authorUid" form:"authorUid"`
	CreatedAt     timex.Time    `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
}

// TableName HistorySnapshot's table name
func (*HistorySnapshot) TableName() string {
	return TableNameHistorySnapshot
}
