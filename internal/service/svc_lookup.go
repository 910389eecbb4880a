package service

import (
	"strconv"
	"strings"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/util"
)

// resolveLookup projects one field of the linked targets through the
// configured relation. FIRST takes the first link only; LIST_UNIQUE_STRINGS
// stringifies every value, deduplicates and joins.
// resolveLookup 沿配置的关联列投影目标字段，
// FIRST 只取第一条边，LIST_UNIQUE_STRINGS 串化去重后拼接。
func (svc *Service) resolveLookup(rctx *resolveCtx, cols []*model.Column, vals map[int64]cellvalue.Value, col *model.Column) cellvalue.Value {
	relCol := columnByID(cols, col.LookupRelationColumnID)
	if relCol == nil || relCol.Type != model.ColumnRelation {
		return cellvalue.Text(cellvalue.SentinelConfigError)
	}
	if col.LookupMultiplicity != model.LookupFirst && col.LookupMultiplicity != model.LookupListUniqueStrings {
		return cellvalue.Text(cellvalue.SentinelConfigError)
	}

	refs := vals[relCol.ID].RowRefs()
	if col.LookupMultiplicity == model.LookupFirst && len(refs) > 1 {
		refs = refs[:1]
	}

	values := make([]cellvalue.Value, 0, len(refs))
	for _, id := range refs {
		value, err := svc.lookupTargetValue(rctx, relCol, col, id)
		if err == errCycle {
			return cellvalue.Text(cellvalue.SentinelCycle)
		}
		if err != nil {
			return cellvalue.Text(cellvalue.SentinelError)
		}
		if value.IsSentinel() {
			return value
		}
		values = append(values, value)
	}

	if col.LookupMultiplicity == model.LookupFirst {
		if len(values) == 0 {
			return cellvalue.Null()
		}
		return values[0]
	}

	strs := make([]string, 0, len(values))
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		strs = append(strs, v.String())
	}
	return cellvalue.Text(strings.Join(util.ArrayUnique(strs), ", "))
}

// lookupTargetValue 取单个关联目标上的字段值，笔记目标走伪字段白名单
func (svc *Service) lookupTargetValue(rctx *resolveCtx, relCol, col *model.Column, targetID int64) (cellvalue.Value, error) {
	if relCol.RelationTarget == model.RelationToNote {
		if !model.IsNoteLookupField(col.LookupTargetField) {
			return cellvalue.Text(cellvalue.SentinelConfigError), nil
		}
		note, err := svc.dao.NoteGetById(targetID)
		if err != nil {
			return cellvalue.Null(), err
		}
		if note == nil {
			return cellvalue.Null(), nil
		}
		value, ok := note.LookupField(col.LookupTargetField)
		if !ok {
			return cellvalue.Text(cellvalue.SentinelConfigError), nil
		}
		return value, nil
	}

	targetColID, err := strconv.ParseInt(col.LookupTargetField, 10, 64)
	if err != nil {
		return cellvalue.Text(cellvalue.SentinelConfigError), nil
	}
	target, err := svc.dao.ColumnGetById(targetColID)
	if err != nil {
		return cellvalue.Null(), err
	}
	if target == nil || target.DatabaseID != relCol.RelationDatabaseID {
		return cellvalue.Text(cellvalue.SentinelConfigError), nil
	}
	return svc.valueOfColumn(rctx, targetID, target)
}
