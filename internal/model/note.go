package model

import (
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

const TableNameNote = "note"

// Note 外部笔记实体。引擎只需要关联/查找与软删除涉及的字段，
// 富文本等内容归宿主应用管理。
type Note struct {
	ID          int64       `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Title       string      `gorm:"column:title;not null" json:"title" form:"title"`
	Content     string      `gorm:"column:content" json:"content" form:"content"`
	Type        string      `gorm:"column:type" json:"type" form:"type"`
	FolderID    int64       `gorm:"column:folder_id" json:"folderId" form:"folderId"`
	WorkspaceID int64       `gorm:"column:workspace_id" json:"workspaceId" form:"workspaceId"`
	IsPinned    bool        `gorm:"column:is_pinned;default:false" json:"isPinned" form:"isPinned"`
	IsArchived  bool        `gorm:"column:is_archived;default:false" json:"isArchived" form:"isArchived"`
	OwnerUID    *int64      `gorm:"column:owner_uid;index:idx_note_owner" json:"ownerUid" form:"ownerUid"`
	DeletedAt   *timex.Time `gorm:"column:deleted_at;type:datetime" json:"deletedAt" form:"deletedAt"`
	DeletedBy   int64       `gorm:"column:deleted_by" json:"deletedBy" form:"deletedBy"`
	CreatedAt   timex.Time  `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time  `gorm:"column:updated_at;type:datetime" json:"updatedAt" form:"updatedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}

// 可被 LOOKUP 列投影的笔记伪字段白名单。白名单之外的字段请求属于配置错误。
var noteLookupFields = map[string]bool{
	"id":          true,
	"title":       true,
	"content":     true,
	"type":        true,
	"createdAt":   true,
	"updatedAt":   true,
	"folderId":    true,
	"workspaceId": true,
	"isPinned":    true,
	"isArchived":  true,
}

// IsNoteLookupField 判断伪字段是否在白名单内
func IsNoteLookupField(field string) bool {
	return noteLookupFields[field]
}

// LookupField projects one allow-listed pseudo-field as a tagged value.
// LookupField 将白名单伪字段投影为带标签的值。
func (n *Note) LookupField(field string) (cellvalue.Value, bool) {
	switch field {
	case "id":
		return cellvalue.Number(float64(n.ID)), true
	case "title":
		return cellvalue.Text(n.Title), true
	case "content":
		return cellvalue.Text(n.Content), true
	case "type":
		return cellvalue.Text(n.Type), true
	case "createdAt":
		return cellvalue.Text(n.CreatedAt.String()), true
	case "updatedAt":
		return cellvalue.Text(n.UpdatedAt.String()), true
	case "folderId":
		return cellvalue.Number(float64(n.FolderID)), true
	case "workspaceId":
		return cellvalue.Number(float64(n.WorkspaceID)), true
	case "isPinned":
		return cellvalue.Bool(n.IsPinned), true
	case "isArchived":
		return cellvalue.Bool(n.IsArchived), true
	}
	return cellvalue.Null(), false
}
