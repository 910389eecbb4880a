package service

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/convert"
	"github.com/papyrus-notes/table-engine/pkg/rollup"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// Column 列定义的服务层视图
type Column struct {
	ID                     int64                    `json:"id"`
	DatabaseID             int64                    `json:"databaseId"`
	Name                   string                   `json:"name"`
	Position               int64                    `json:"position"`
	Type                   model.ColumnType         `json:"type"`
	RelationTarget         model.RelationTarget     `json:"relationTarget,omitempty"`
	RelationDatabaseID     int64                    `json:"relationDatabaseId,omitempty"`
	InverseColumnID        int64                    `json:"inverseColumnId,omitempty"`
	Expression             string                   `json:"expression,omitempty"`
	RollupRelationColumnID int64                    `json:"rollupRelationColumnId,omitempty"`
	RollupTargetColumnID   int64                    `json:"rollupTargetColumnId,omitempty"`
	RollupFunc             rollup.Func              `json:"rollupFunc,omitempty"`
	LookupRelationColumnID int64                    `json:"lookupRelationColumnId,omitempty"`
	LookupTargetField      string                   `json:"lookupTargetField,omitempty"`
	LookupMultiplicity     model.LookupMultiplicity `json:"lookupMultiplicity,omitempty"`
	Rules                  string                   `json:"rules,omitempty"`
	CreatedAt              timex.Time               `json:"createdAt"`
	UpdatedAt              timex.Time               `json:"updatedAt"`
}

// ColumnCreateParams 建列参数
type ColumnCreateParams struct {
	Name                   string                   `json:"name" form:"name"`
	Type                   model.ColumnType         `json:"type" form:"type"`
	RelationTarget         model.RelationTarget     `json:"relationTarget" form:"relationTarget"`
	RelationDatabaseID     int64                    `json:"relationDatabaseId" form:"relationDatabaseId"`
	InverseColumnID        int64                    `json:"inverseColumnId" form:"inverseColumnId"`
	Expression             string                   `json:"expression" form:"expression"`
	RollupRelationColumnID int64                    `json:"rollupRelationColumnId" form:"rollupRelationColumnId"`
	RollupTargetColumnID   int64                    `json:"rollupTargetColumnId" form:"rollupTargetColumnId"`
	RollupFunc             rollup.Func              `json:"rollupFunc" form:"rollupFunc"`
	LookupRelationColumnID int64                    `json:"lookupRelationColumnId" form:"lookupRelationColumnId"`
	LookupTargetField      string                   `json:"lookupTargetField" form:"lookupTargetField"`
	LookupMultiplicity     model.LookupMultiplicity `json:"lookupMultiplicity" form:"lookupMultiplicity"`
	Rules                  []model.ValidationRule   `json:"rules" form:"rules"`
}

// ColumnCreate defines a new column on a database. Inverse relation pairing
// is wired symmetrically inside one transaction.
// ColumnCreate 在数据表上定义新列，反向关联配对在同一事务内对称写入。
func (svc *Service) ColumnCreate(databaseID int64, params *ColumnCreateParams, actingUID int64) (*Column, error) {
	db, err := svc.dao.DatabaseGetById(databaseID)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if db == nil {
		return nil, code.ErrorNotFoundDatabase
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, databaseID, model.LevelWrite)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return nil, code.ErrorPermissionDenied
	}

	if params.Name == "" {
		return nil, code.ErrorInvalidParams.WithDetails("column name must not be empty")
	}
	if !params.Type.IsValid() {
		return nil, code.ErrorColumnConfig.WithDetails(fmt.Sprintf("unknown column type %q", params.Type))
	}

	existing, err := svc.dao.ColumnGetByName(databaseID, params.Name)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorColumnNameTaken
	}

	m := &model.Column{
		DatabaseID:             databaseID,
		Name:                   params.Name,
		Type:                   params.Type,
		RelationTarget:         params.RelationTarget,
		RelationDatabaseID:     params.RelationDatabaseID,
		InverseColumnID:        params.InverseColumnID,
		Expression:             params.Expression,
		RollupRelationColumnID: params.RollupRelationColumnID,
		RollupTargetColumnID:   params.RollupTargetColumnID,
		RollupFunc:             params.RollupFunc,
		LookupRelationColumnID: params.LookupRelationColumnID,
		LookupTargetField:      params.LookupTargetField,
		LookupMultiplicity:     params.LookupMultiplicity,
		CreatedAt:              timex.Now(),
		UpdatedAt:              timex.Now(),
	}

	if len(params.Rules) > 0 {
		encoded, err := sonic.Marshal(params.Rules)
		if err != nil {
			return nil, code.ErrorInvalidParams.WithDetails(err.Error())
		}
		m.Rules = string(encoded)
	}

	if err := svc.checkColumnConfig(m); err != nil {
		return nil, err
	}

	var created *model.Column
	err = svc.dao.Tx(func(tx *dao.Dao) error {
		maxPos, err := tx.ColumnMaxPosition(databaseID)
		if err != nil {
			return err
		}
		m.Position = maxPos + 1

		created, err = tx.ColumnCreate(m)
		if err != nil {
			return err
		}

		// 反向列配对：另一侧也指回本列
		if m.Type == model.ColumnRelation && m.InverseColumnID != 0 {
			inverse, err := tx.ColumnGetById(m.InverseColumnID)
			if err != nil {
				return err
			}
			if inverse == nil {
				return code.ErrorColumnConfig.WithDetails("inverse column does not exist")
			}
			inverse.InverseColumnID = created.ID
			if err := tx.ColumnUpdate(inverse); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if c, ok := err.(*code.Code); ok {
			return nil, c
		}
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}

	return convert.StructAssign(created, &Column{}).(*Column), nil
}

// checkColumnConfig 校验派生列与关联列的接线完整性
func (svc *Service) checkColumnConfig(m *model.Column) error {
	switch m.Type {
	case model.ColumnRelation:
		switch m.RelationTarget {
		case model.RelationToDatabase:
			if m.RelationDatabaseID == 0 {
				return code.ErrorColumnConfig.WithDetails("relation column needs a target database")
			}
			target, err := svc.dao.DatabaseGetById(m.RelationDatabaseID)
			if err != nil {
				return code.ErrorStorage.WithDetails(err.Error())
			}
			if target == nil {
				return code.ErrorColumnConfig.WithDetails("relation target database does not exist")
			}
		case model.RelationToNote:
			if m.InverseColumnID != 0 {
				return code.ErrorColumnConfig.WithDetails("note relations cannot have an inverse column")
			}
		default:
			return code.ErrorColumnConfig.WithDetails("relation column needs a target kind")
		}
		if m.InverseColumnID != 0 {
			inverse, err := svc.dao.ColumnGetById(m.InverseColumnID)
			if err != nil {
				return code.ErrorStorage.WithDetails(err.Error())
			}
			if inverse == nil || inverse.Type != model.ColumnRelation {
				return code.ErrorColumnConfig.WithDetails("inverse column must be an existing relation column")
			}
			if inverse.DatabaseID != m.RelationDatabaseID || inverse.RelationDatabaseID != m.DatabaseID {
				return code.ErrorColumnConfig.WithDetails("inverse column must relate back to this database")
			}
		}

	case model.ColumnRollup:
		if m.RollupRelationColumnID == 0 || m.RollupTargetColumnID == 0 {
			return code.ErrorColumnConfig.WithDetails("rollup column needs a relation column and a target column")
		}
		if !m.RollupFunc.IsValid() {
			return code.ErrorColumnConfig.WithDetails(fmt.Sprintf("unknown aggregate function %q", m.RollupFunc))
		}
		rel, err := svc.dao.ColumnGetById(m.RollupRelationColumnID)
		if err != nil {
			return code.ErrorStorage.WithDetails(err.Error())
		}
		if rel == nil || rel.Type != model.ColumnRelation || rel.DatabaseID != m.DatabaseID {
			return code.ErrorColumnConfig.WithDetails("rollup source must be a relation column of the same database")
		}
		// 指向笔记的关联不支持汇总（参见 DESIGN.md 的未决问题决策）
		if rel.RelationTarget == model.RelationToNote {
			return code.ErrorColumnConfig.WithDetails("rollups over note relations are not supported")
		}

	case model.ColumnLookup:
		if m.LookupRelationColumnID == 0 || m.LookupTargetField == "" {
			return code.ErrorColumnConfig.WithDetails("lookup column needs a relation column and a target field")
		}
		if m.LookupMultiplicity != model.LookupFirst && m.LookupMultiplicity != model.LookupListUniqueStrings {
			return code.ErrorColumnConfig.WithDetails("lookup column needs a multiplicity behavior")
		}
		rel, err := svc.dao.ColumnGetById(m.LookupRelationColumnID)
		if err != nil {
			return code.ErrorStorage.WithDetails(err.Error())
		}
		if rel == nil || rel.Type != model.ColumnRelation || rel.DatabaseID != m.DatabaseID {
			return code.ErrorColumnConfig.WithDetails("lookup source must be a relation column of the same database")
		}
		if rel.RelationTarget == model.RelationToNote && !model.IsNoteLookupField(m.LookupTargetField) {
			return code.ErrorColumnConfig.WithDetails(fmt.Sprintf("note field %q cannot be projected", m.LookupTargetField))
		}
	}
	return nil
}

// ColumnUpdatePatch 列更新补丁，nil 字段保持不变
type ColumnUpdatePatch struct {
	Name                 *string                   `json:"name" form:"name"`
	Expression           *string                   `json:"expression" form:"expression"`
	RollupFunc           *rollup.Func              `json:"rollupFunc" form:"rollupFunc"`
	RollupTargetColumnID *int64                    `json:"rollupTargetColumnId" form:"rollupTargetColumnId"`
	LookupTargetField    *string                   `json:"lookupTargetField" form:"lookupTargetField"`
	LookupMultiplicity   *model.LookupMultiplicity `json:"lookupMultiplicity" form:"lookupMultiplicity"`
	Rules                *[]model.ValidationRule   `json:"rules" form:"rules"`
}

// ColumnUpdate 更新列定义中允许变更的部分
func (svc *Service) ColumnUpdate(columnID int64, patch *ColumnUpdatePatch, actingUID int64) (*Column, error) {
	m, err := svc.dao.ColumnGetById(columnID)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if m == nil {
		return nil, code.ErrorNotFoundColumn
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, m.DatabaseID, model.LevelWrite)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return nil, code.ErrorPermissionDenied
	}

	if patch.Name != nil && *patch.Name != m.Name {
		other, err := svc.dao.ColumnGetByName(m.DatabaseID, *patch.Name)
		if err != nil {
			return nil, code.ErrorStorage.WithDetails(err.Error())
		}
		if other != nil {
			return nil, code.ErrorColumnNameTaken
		}
		m.Name = *patch.Name
	}
	if patch.Expression != nil {
		m.Expression = *patch.Expression
	}
	if patch.RollupFunc != nil {
		m.RollupFunc = *patch.RollupFunc
	}
	if patch.RollupTargetColumnID != nil {
		m.RollupTargetColumnID = *patch.RollupTargetColumnID
	}
	if patch.LookupTargetField != nil {
		m.LookupTargetField = *patch.LookupTargetField
	}
	if patch.LookupMultiplicity != nil {
		m.LookupMultiplicity = *patch.LookupMultiplicity
	}
	if patch.Rules != nil {
		encoded, err := sonic.Marshal(*patch.Rules)
		if err != nil {
			return nil, code.ErrorInvalidParams.WithDetails(err.Error())
		}
		m.Rules = string(encoded)
	}

	if err := svc.checkColumnConfig(m); err != nil {
		return nil, err
	}

	m.UpdatedAt = timex.Now()
	if err := svc.dao.ColumnUpdate(m); err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	return convert.StructAssign(m, &Column{}).(*Column), nil
}
