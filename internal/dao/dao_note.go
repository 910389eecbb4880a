package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// NoteCreate 创建笔记
func (d *Dao) NoteCreate(m *model.Note) (*model.Note, error) {
	m.CreatedAt = timex.Now()
	m.UpdatedAt = timex.Now()
	if err := d.DB().Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// NoteGetById 根据 ID 获取笔记，不存在返回 (nil, nil)
func (d *Dao) NoteGetById(id int64) (*model.Note, error) {
	var m model.Note
	err := d.DB().Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// NoteUpdateFields 更新笔记的指定字段
func (d *Dao) NoteUpdateFields(id int64, fields map[string]any) error {
	fields["updated_at"] = timex.Now()
	return d.DB().Model(&model.Note{}).Where("id = ?", id).Updates(fields).Error
}

// NoteMarkDeleted 设置笔记软删除标记
func (d *Dao) NoteMarkDeleted(id int64, deleterUID int64) error {
	now := timex.Now()
	return d.DB().Model(&model.Note{}).Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": &now,
			"deleted_by": deleterUID,
			"updated_at": now,
		}).Error
}

// NoteClearDeleted 显式清空笔记软删除标记，恢复即此操作
func (d *Dao) NoteClearDeleted(id int64) error {
	return d.DB().Model(&model.Note{}).Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": nil,
			"deleted_by": 0,
			"updated_at": timex.Now(),
		}).Error
}
