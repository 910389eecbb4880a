package model

// LinkTarget 关联边指向的实体种类
type LinkTarget string

const (
	LinkToRow  LinkTarget = "row"
	LinkToNote LinkTarget = "note"
)

const TableNameRelationLink = "relation_link"

// RelationLink 有向关联边。配置了反向列时，另一方向的镜像边必须同事务维护。
type RelationLink struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	SourceRowID    int64      `gorm:"column:source_row_id;not null;index:idx_link_source,priority:1" json:"sourceRowId" form:"sourceRowId"`
	SourceColumnID int64      `gorm:"column:source_column_id;not null;index:idx_link_source,priority:2" json:"sourceColumnId" form:"sourceColumnId"`
	TargetKind     LinkTarget `gorm:"column:target_kind;not null" json:"targetKind" form:"targetKind"`
	TargetID       int64      `gorm:"column:target_id;not null;index:idx_link_target" json:"targetId" form:"targetId"`
	Position       int64      `gorm:"column:position;not null" json:"position" form:"position"`
}

// TableName RelationLink's table name
func (*RelationLink) TableName() string {
	return TableNameRelationLink
}
