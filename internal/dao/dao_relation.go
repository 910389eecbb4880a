package dao

import (
	"github.com/papyrus-notes/table-engine/internal/model"
)

// LinkCreate 创建一条有向关联边
func (d *Dao) LinkCreate(sourceRowID, sourceColumnID int64, targetKind model.LinkTarget, targetID, position int64) error {
	m := &model.RelationLink{
		SourceRowID:    sourceRowID,
		SourceColumnID: sourceColumnID,
		TargetKind:     targetKind,
		TargetID:       targetID,
		Position:       position,
	}
	return d.DB().Create(m).Error
}

// LinksBySource 按顺序读取某行某列发出的全部关联边
func (d *Dao) LinksBySource(sourceRowID, sourceColumnID int64) ([]*model.RelationLink, error) {
	var list []*model.RelationLink
	err := d.DB().
		Where("source_row_id = ? AND source_column_id = ?", sourceRowID, sourceColumnID).
		Order("position ASC").Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// LinkDeleteBySource 删除某行某列发出的全部关联边
func (d *Dao) LinkDeleteBySource(sourceRowID, sourceColumnID int64) error {
	return d.DB().
		Where("source_row_id = ? AND source_column_id = ?", sourceRowID, sourceColumnID).
		Delete(&model.RelationLink{}).Error
}

// LinkDeleteMirror 删除反向列上指向某行的镜像边
func (d *Dao) LinkDeleteMirror(inverseColumnID, targetRowID int64) error {
	return d.DB().
		Where("source_column_id = ? AND target_id = ? AND target_kind = ?",
			inverseColumnID, targetRowID, model.LinkToRow).
		Delete(&model.RelationLink{}).Error
}

// LinkDeleteByRow 删除某行发出的全部关联边（整行删除时用）
func (d *Dao) LinkDeleteByRow(rowID int64) error {
	return d.DB().Where("source_row_id = ?", rowID).Delete(&model.RelationLink{}).Error
}

// LinkDeleteTargeting 删除所有指向某实体的关联边
func (d *Dao) LinkDeleteTargeting(targetKind model.LinkTarget, targetID int64) error {
	return d.DB().
		Where("target_kind = ? AND target_id = ?", targetKind, targetID).
		Delete(&model.RelationLink{}).Error
}

// LinkMaxPosition 返回某行某列关联边的最大序号
func (d *Dao) LinkMaxPosition(sourceRowID, sourceColumnID int64) (int64, error) {
	var max int64
	err := d.DB().Model(&model.RelationLink{}).
		Where("source_row_id = ? AND source_column_id = ?", sourceRowID, sourceColumnID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}
