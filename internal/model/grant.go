package model

import "github.com/papyrus-notes/table-engine/pkg/timex"

// ObjectType 授权对象种类
type ObjectType string

const (
	ObjectDatabase ObjectType = "database"
	ObjectNote     ObjectType = "note"
)

// GrantLevel 授权级别，READ < WRITE < ADMIN
type GrantLevel string

const (
	LevelRead  GrantLevel = "read"
	LevelWrite GrantLevel = "write"
	LevelAdmin GrantLevel = "admin"
)

// Rank 返回级别在层级中的序号，未知级别返回 -1
func (l GrantLevel) Rank() int {
	switch l {
	case LevelRead:
		return 0
	case LevelWrite:
		return 1
	case LevelAdmin:
		return 2
	}
	return -1
}

// Satisfies 判断当前级别是否覆盖所需级别
func (l GrantLevel) Satisfies(required GrantLevel) bool {
	return l.Rank() >= 0 && required.Rank() >= 0 && l.Rank() >= required.Rank()
}

const TableNamePermissionGrant = "permission_grant"

// PermissionGrant 显式授权记录，补充所有者的隐式完全访问
type PermissionGrant struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	ObjectType ObjectType `gorm:"column:object_type;not null;uniqueIndex:idx_grant_object_user,priority:1" json:"objectType" form:"objectType"`
	ObjectID   int64      `gorm:"column:object_id;not null;uniqueIndex:idx_grant_object_user,priority:2" json:"objectId" form:"objectId"`
	UID        int64      `gorm:"column:uid;not null;uniqueIndex:idx_grant_object_user,priority:3" json:"uid" form:"uid"`
	Level      GrantLevel `gorm:"column:level;not null" json:"level" form:"level"`
	CreatedAt  timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
}

// TableName PermissionGrant's table name
func (*PermissionGrant) TableName() string {
	return TableNamePermissionGrant
}
