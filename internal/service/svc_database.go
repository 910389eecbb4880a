package service

import (
	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/convert"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// Database 数据表容器的服务层视图
type Database struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	OwnerUID   *int64     `json:"ownerUid"`
	IsCalendar bool       `json:"isCalendar"`
	CreatedAt  timex.Time `json:"createdAt"`
	UpdatedAt  timex.Time `json:"updatedAt"`
}

// DatabaseCreate 创建数据表。ownerUID 为 nil 表示公开表。
func (svc *Service) DatabaseCreate(name string, ownerUID *int64, isCalendar bool) (*Database, error) {
	if name == "" {
		return nil, code.ErrorInvalidParams.WithDetails("database name must not be empty")
	}
	m, err := svc.dao.DatabaseCreate(name, ownerUID, isCalendar)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	return convert.StructAssign(m, &Database{}).(*Database), nil
}

// DatabaseGet 获取数据表，需要 READ 权限
func (svc *Service) DatabaseGet(id int64, actingUID int64) (*Database, error) {
	m, err := svc.dao.DatabaseGetById(id)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if m == nil {
		return nil, code.ErrorNotFoundDatabase
	}
	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, id, model.LevelRead)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return nil, code.ErrorPermissionDenied
	}
	return convert.StructAssign(m, &Database{}).(*Database), nil
}

// DatabaseDelete 删除数据表及其全部列、行、单元格与关联边，需要 ADMIN 权限
func (svc *Service) DatabaseDelete(id int64, actingUID int64) error {
	m, err := svc.dao.DatabaseGetById(id)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if m == nil {
		return code.ErrorNotFoundDatabase
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, id, model.LevelAdmin)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		rows, err := tx.RowListByDatabase(id)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := tx.CellDeleteByRow(row.ID); err != nil {
				return err
			}
			if err := tx.LinkDeleteByRow(row.ID); err != nil {
				return err
			}
			if err := tx.LinkDeleteTargeting(model.LinkToRow, row.ID); err != nil {
				return err
			}
			if err := tx.DB().Where("id = ?", row.ID).Delete(&model.Row{}).Error; err != nil {
				return err
			}
		}
		cols, err := tx.ColumnListByDatabase(id)
		if err != nil {
			return err
		}
		for _, col := range cols {
			if err := tx.ColumnDelete(col.ID); err != nil {
				return err
			}
		}
		return tx.DatabaseDelete(id)
	})
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}
