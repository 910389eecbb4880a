package model

import (
	"github.com/pkg/errors"

	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

const TableNameCell = "cell"

// Cell 单元格存储。物理上只有 text/number/bool 三条通道，列表值以
// JSON 编码落在 text 通道，kind 标签在边界处校验。
type Cell struct {
	ID        int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	RowID     int64          `gorm:"column:row_id;not null;uniqueIndex:idx_cell_row_column,priority:1" json:"rowId" form:"rowId"`
	ColumnID  int64          `gorm:"column:column_id;not null;uniqueIndex:idx_cell_row_column,priority:2" json:"columnId" form:"columnId"`
	Kind      cellvalue.Kind `gorm:"column:kind;not null" json:"kind" form:"kind"`
	TextVal   string         `gorm:"column:text_val" json:"textVal" form:"textVal"`
	NumberVal float64        `gorm:"column:number_val" json:"numberVal" form:"numberVal"`
	BoolVal   bool           `gorm:"column:bool_val" json:"boolVal" form:"boolVal"`
}

// TableName Cell's table name
func (*Cell) TableName() string {
	return TableNameCell
}

// Value decodes the stored lanes back into a tagged value.
// Value 将存储通道解码回带标签的值。
func (c *Cell) Value() (cellvalue.Value, error) {
	switch c.Kind {
	case cellvalue.KindNull:
		return cellvalue.Null(), nil
	case cellvalue.KindText:
		return cellvalue.Text(c.TextVal), nil
	case cellvalue.KindNumber:
		return cellvalue.Number(c.NumberVal), nil
	case cellvalue.KindBool:
		return cellvalue.Bool(c.BoolVal), nil
	case cellvalue.KindStringList, cellvalue.KindRowRefList:
		return cellvalue.Decode(c.TextVal)
	}
	return cellvalue.Null(), errors.Errorf("model: cell %d has unknown kind %q", c.ID, c.Kind)
}

// SetValue encodes a tagged value into the storage lanes.
// SetValue 将带标签的值编码进存储通道。
func (c *Cell) SetValue(v cellvalue.Value) error {
	c.Kind = v.Kind()
	c.TextVal = ""
	c.NumberVal = 0
	c.BoolVal = false

	switch v.Kind() {
	case cellvalue.KindNull:
		return nil
	case cellvalue.KindText:
		c.TextVal = v.Text()
		return nil
	case cellvalue.KindNumber:
		c.NumberVal = v.Number()
		return nil
	case cellvalue.KindBool:
		c.BoolVal = v.Bool()
		return nil
	case cellvalue.KindStringList, cellvalue.KindRowRefList:
		encoded, err := v.Encode()
		if err != nil {
			return err
		}
		c.TextVal = encoded
		return nil
	}
	return errors.Errorf("model: cannot store value kind %q", v.Kind())
}
