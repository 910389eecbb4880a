package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// RowCreate 创建行，行序号为当前最大值加一
func (d *Dao) RowCreate(databaseID int64, recurrenceRule string) (*model.Row, error) {
	var maxPos int64
	err := d.DB().Model(&model.Row{}).
		Where("database_id = ?", databaseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	if err != nil {
		return nil, err
	}

	m := &model.Row{
		DatabaseID:     databaseID,
		Position:       maxPos + 1,
		RecurrenceRule: recurrenceRule,
		CreatedAt:      timex.Now(),
		UpdatedAt:      timex.Now(),
	}
	if err := d.DB().Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// RowGetById 根据 ID 获取行，不存在返回 (nil, nil)
func (d *Dao) RowGetById(id int64) (*model.Row, error) {
	var m model.Row
	err := d.DB().Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RowTouch 更新行的修改时间
func (d *Dao) RowTouch(id int64) error {
	return d.DB().Model(&model.Row{}).Where("id = ?", id).
		Update("updated_at", timex.Now()).Error
}

// RowMarkDeleted 设置软删除标记
func (d *Dao) RowMarkDeleted(id int64, deleterUID int64) error {
	now := timex.Now()
	return d.DB().Model(&model.Row{}).Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": &now,
			"deleted_by": deleterUID,
			"updated_at": now,
		}).Error
}

// RowClearDeleted explicitly nulls both soft-delete fields; restore is this
// operation, not a generic update.
// RowClearDeleted 显式清空两个软删除字段；恢复即此操作。
func (d *Dao) RowClearDeleted(id int64) error {
	return d.DB().Model(&model.Row{}).Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": nil,
			"deleted_by": 0,
			"updated_at": timex.Now(),
		}).Error
}

// RowCountByDatabase 统计数据表的行数（含软删除行）
func (d *Dao) RowCountByDatabase(databaseID int64) (int64, error) {
	var count int64
	err := d.DB().Model(&model.Row{}).
		Where("database_id = ?", databaseID).
		Count(&count).Error
	return count, err
}

// RowListByDatabase 按序号列出数据表全部未删除的行
func (d *Dao) RowListByDatabase(databaseID int64) ([]*model.Row, error) {
	var list []*model.Row
	err := d.DB().Where("database_id = ? AND deleted_at IS NULL", databaseID).
		Order("position ASC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
