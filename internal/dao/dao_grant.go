package dao

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// GrantUpsert 写入或覆盖一条授权记录
func (d *Dao) GrantUpsert(objectType model.ObjectType, objectID, uid int64, level model.GrantLevel) error {
	m := &model.PermissionGrant{
		ObjectType: objectType,
		ObjectID:   objectID,
		UID:        uid,
		Level:      level,
		CreatedAt:  timex.Now(),
	}
	return d.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "object_type"}, {Name: "object_id"}, {Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"level"}),
	}).Create(m).Error
}

// GrantGet 查询某用户对某对象的授权，不存在返回 (nil, nil)
func (d *Dao) GrantGet(objectType model.ObjectType, objectID, uid int64) (*model.PermissionGrant, error) {
	var m model.PermissionGrant
	err := d.DB().
		Where("object_type = ? AND object_id = ? AND uid = ?", objectType, objectID, uid).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GrantDelete 撤销授权
func (d *Dao) GrantDelete(objectType model.ObjectType, objectID, uid int64) error {
	return d.DB().
		Where("object_type = ? AND object_id = ? AND uid = ?", objectType, objectID, uid).
		Delete(&model.PermissionGrant{}).Error
}
