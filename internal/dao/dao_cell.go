package dao

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

// CellUpsert 写入或更新一个单元格
func (d *Dao) CellUpsert(rowID, columnID int64, v cellvalue.Value) error {
	m := &model.Cell{RowID: rowID, ColumnID: columnID}
	if err := m.SetValue(v); err != nil {
		return err
	}
	return d.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "row_id"}, {Name: "column_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "text_val", "number_val", "bool_val"}),
	}).Create(m).Error
}

// CellGet 读取一个单元格，不存在返回 (nil, nil)
func (d *Dao) CellGet(rowID, columnID int64) (*model.Cell, error) {
	var m model.Cell
	err := d.DB().Where("row_id = ? AND column_id = ?", rowID, columnID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CellsByRow 读取一行的全部单元格
func (d *Dao) CellsByRow(rowID int64) ([]*model.Cell, error) {
	var list []*model.Cell
	err := d.DB().Where("row_id = ?", rowID).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CellsByColumn 读取一列的全部单元格，unique 校验用
func (d *Dao) CellsByColumn(columnID int64) ([]*model.Cell, error) {
	var list []*model.Cell
	err := d.DB().Where("column_id = ?", columnID).Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CellDeleteByRow 删除一行的全部单元格
func (d *Dao) CellDeleteByRow(rowID int64) error {
	return d.DB().Where("row_id = ?", rowID).Delete(&model.Cell{}).Error
}

// CellDelete 删除一个单元格
func (d *Dao) CellDelete(rowID, columnID int64) error {
	return d.DB().Where("row_id = ? AND column_id = ?", rowID, columnID).Delete(&model.Cell{}).Error
}
