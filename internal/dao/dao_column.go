package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/internal/model"
)

// ColumnCreate 创建列定义
func (d *Dao) ColumnCreate(m *model.Column) (*model.Column, error) {
	if err := d.DB().Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ColumnUpdate 全量保存列定义
func (d *Dao) ColumnUpdate(m *model.Column) error {
	return d.DB().Save(m).Error
}

// ColumnGetById 根据 ID 获取列定义，不存在返回 (nil, nil)
func (d *Dao) ColumnGetById(id int64) (*model.Column, error) {
	var m model.Column
	err := d.DB().Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ColumnGetByName 按名称在数据表内查找列
func (d *Dao) ColumnGetByName(databaseID int64, name string) (*model.Column, error) {
	var m model.Column
	err := d.DB().Where("database_id = ? AND name = ?", databaseID, name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ColumnListByDatabase 按顺序列出数据表全部列
func (d *Dao) ColumnListByDatabase(databaseID int64) ([]*model.Column, error) {
	var list []*model.Column
	err := d.DB().Where("database_id = ?", databaseID).Order("position ASC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ColumnMaxPosition 返回数据表内的最大列序号，无列时为 0
func (d *Dao) ColumnMaxPosition(databaseID int64) (int64, error) {
	var max int64
	err := d.DB().Model(&model.Column{}).
		Where("database_id = ?", databaseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}

// ColumnDelete 删除列定义
func (d *Dao) ColumnDelete(id int64) error {
	return d.DB().Where("id = ?", id).Delete(&model.Column{}).Error
}
