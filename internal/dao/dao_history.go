package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// HistoryCreate 追加一条历史快照，版本号由调用方在实体写锁内分配
func (d *Dao) HistoryCreate(m *model.HistorySnapshot) error {
	m.CreatedAt = timex.Now()
	return d.DB().Create(m).Error
}

// HistoryMaxVersion 返回实体当前最大版本号，无历史时为 0
func (d *Dao) HistoryMaxVersion(entityType model.HistoryEntity, entityID int64) (int64, error) {
	var max int64
	err := d.DB().Model(&model.HistorySnapshot{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max, err
}

// HistoryList 按版本号倒序分页列出实体历史
func (d *Dao) HistoryList(entityType model.HistoryEntity, entityID int64, limit, offset int) ([]*model.HistorySnapshot, int64, error) {
	q := d.DB().Model(&model.HistorySnapshot{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var list []*model.HistorySnapshot
	err := q.Order("version DESC").Limit(limit).Offset(offset).Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, count, nil
}

// HistoryGetByVersion 获取实体的指定版本快照，不存在返回 (nil, nil)
func (d *Dao) HistoryGetByVersion(entityType model.HistoryEntity, entityID, version int64) (*model.HistorySnapshot, error) {
	var m model.HistorySnapshot
	err := d.DB().
		Where("entity_type = ? AND entity_id = ? AND version = ?", entityType, entityID, version).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// HistoryLatest 返回实体最近的 n 条快照，版本号倒序
func (d *Dao) HistoryLatest(entityType model.HistoryEntity, entityID int64, n int) ([]*model.HistorySnapshot, error) {
	var list []*model.HistorySnapshot
	err := d.DB().
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("version DESC").Limit(n).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
