package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// DatabaseCreate 创建数据表容器
func (d *Dao) DatabaseCreate(name string, ownerUID *int64, isCalendar bool) (*model.Database, error) {
	m := &model.Database{
		Name:       name,
		OwnerUID:   ownerUID,
		IsCalendar: isCalendar,
		CreatedAt:  timex.Now(),
		UpdatedAt:  timex.Now(),
	}
	if err := d.DB().Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DatabaseGetById 根据 ID 获取数据表，不存在返回 (nil, nil)
func (d *Dao) DatabaseGetById(id int64) (*model.Database, error) {
	var m model.Database
	err := d.DB().Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// DatabaseDelete 物理删除数据表容器（列、行由服务层级联处理）
func (d *Dao) DatabaseDelete(id int64) error {
	return d.DB().Where("id = ?", id).Delete(&model.Database{}).Error
}
