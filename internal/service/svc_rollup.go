package service

import (
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/rollup"
)

// resolveRollup aggregates the target column over every row linked through
// the configured relation. Broken wiring resolves to the config sentinel,
// a recursion cycle to the cycle sentinel; neither fails the read.
// resolveRollup 沿配置的关联列聚合目标列，配置损坏与成环都以哨兵串呈现。
func (svc *Service) resolveRollup(rctx *resolveCtx, cols []*model.Column, vals map[int64]cellvalue.Value, col *model.Column) cellvalue.Value {
	relCol := columnByID(cols, col.RollupRelationColumnID)
	if relCol == nil || relCol.Type != model.ColumnRelation || relCol.RelationTarget != model.RelationToDatabase {
		return cellvalue.Text(cellvalue.SentinelConfigError)
	}
	if !col.RollupFunc.IsValid() {
		return cellvalue.Text(cellvalue.SentinelConfigError)
	}

	target, err := svc.dao.ColumnGetById(col.RollupTargetColumnID)
	if err != nil {
		return cellvalue.Text(cellvalue.SentinelError)
	}
	if target == nil || target.DatabaseID != relCol.RelationDatabaseID {
		return cellvalue.Text(cellvalue.SentinelConfigError)
	}

	refs := vals[relCol.ID].RowRefs()
	values := make([]cellvalue.Value, 0, len(refs))
	for _, id := range refs {
		value, err := svc.valueOfColumn(rctx, id, target)
		if err == errCycle {
			return cellvalue.Text(cellvalue.SentinelCycle)
		}
		if err != nil {
			return cellvalue.Text(cellvalue.SentinelError)
		}
		values = append(values, value)
	}

	out, err := rollup.Aggregate(col.RollupFunc, values, target.Type.RollupTargetKind())
	if err != nil {
		return cellvalue.Text(cellvalue.SentinelConfigError)
	}
	return out
}

// valueOfColumn fetches one column value from another row. Derived targets
// need a full recursive resolution of that row; stored targets read the
// cell directly.
// valueOfColumn 取另一行上某列的值，派生目标走整行递归解析。
func (svc *Service) valueOfColumn(rctx *resolveCtx, rowID int64, target *model.Column) (cellvalue.Value, error) {
	if target.Type.IsDerived() {
		row, _, rvals, err := svc.resolveRow(rctx, rowID)
		if err != nil {
			return cellvalue.Null(), err
		}
		if row == nil {
			return cellvalue.Null(), nil
		}
		return rvals[target.ID], nil
	}

	if target.Type == model.ColumnRelation {
		links, err := svc.dao.LinksBySource(rowID, target.ID)
		if err != nil {
			return cellvalue.Null(), err
		}
		refs := make([]int64, 0, len(links))
		for _, link := range links {
			refs = append(refs, link.TargetID)
		}
		return cellvalue.RowRefList(refs), nil
	}

	cell, err := svc.dao.CellGet(rowID, target.ID)
	if err != nil {
		return cellvalue.Null(), err
	}
	if cell == nil {
		return cellvalue.Null(), nil
	}
	return cell.Value()
}
