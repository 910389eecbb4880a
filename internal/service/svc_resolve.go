package service

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/formula"
	"github.com/papyrus-notes/table-engine/pkg/logger"
	"github.com/pkg/errors"
)

// resolveCtx carries the state of one read: the visited set holds the rows
// on the current recursion path so a self referential chain is cut off with
// a cycle sentinel instead of looping.
// resolveCtx 携带一次读取的解析状态，visited 记录当前递归路径上的行。
type resolveCtx struct {
	visited  map[int64]bool
	depth    int
	maxDepth int
	traceID  string
}

// errCycle 内部哨兵，递归链路成环或超深时返回，由调用方转成单元格哨兵串
var errCycle = errors.New("resolution cycle")

// RowGet resolves one row to its full value map: stored cells and links
// first, then rollups, formulas and lookups in that order. A missing row
// yields (nil, nil). Misconfigured derived columns resolve to sentinel
// strings and never fail the whole read.
// RowGet 解析一行的完整值表，四遍求值，缺行返回 (nil, nil)，
// 派生列配置错误以哨兵串呈现而不让整次读取失败。
func (svc *Service) RowGet(rowID int64) (*Row, error) {
	rctx := &resolveCtx{
		visited:  map[int64]bool{},
		maxDepth: svc.maxResolveDepth(),
		traceID:  uuid.NewString(),
	}

	row, cols, vals, err := svc.resolveRow(rctx, rowID)
	if err != nil {
		return nil, code.ErrorStorage.WithDetails(err.Error())
	}
	if row == nil {
		return nil, nil
	}

	values := make(map[string]any, len(cols))
	for _, col := range cols {
		values[col.Name] = vals[col.ID].Interface()
	}

	svc.log.Debug("row resolved",
		zap.String(logger.FieldTraceID, rctx.traceID),
		zap.Int64(logger.FieldRowID, rowID),
		zap.Int("columns", len(cols)))

	return &Row{
		ID:             row.ID,
		DatabaseID:     row.DatabaseID,
		Position:       row.Position,
		RecurrenceRule: row.RecurrenceRule,
		Deleted:        row.IsDeleted(),
		Values:         values,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

// resolveRow resolves one row to a value map keyed by column ID. errCycle
// means the row is already on the current recursion path; any other error
// is a storage failure.
// resolveRow 解析一行并返回以列 ID 为键的值表。
func (svc *Service) resolveRow(rctx *resolveCtx, rowID int64) (*model.Row, []*model.Column, map[int64]cellvalue.Value, error) {
	if rctx.visited[rowID] || rctx.depth >= rctx.maxDepth {
		return nil, nil, nil, errCycle
	}
	rctx.visited[rowID] = true
	rctx.depth++
	defer func() {
		delete(rctx.visited, rowID)
		rctx.depth--
	}()

	row, err := svc.dao.RowGetById(rowID)
	if err != nil {
		return nil, nil, nil, err
	}
	if row == nil {
		return nil, nil, nil, nil
	}

	cols, err := svc.dao.ColumnListByDatabase(row.DatabaseID)
	if err != nil {
		return nil, nil, nil, err
	}

	vals := make(map[int64]cellvalue.Value, len(cols))

	// 第一遍：存储态。单元格与关联边，缺失按 null 处理。
	for _, col := range cols {
		switch {
		case col.Type == model.ColumnRelation:
			links, err := svc.dao.LinksBySource(rowID, col.ID)
			if err != nil {
				return nil, nil, nil, err
			}
			refs := make([]int64, 0, len(links))
			for _, link := range links {
				refs = append(refs, link.TargetID)
			}
			vals[col.ID] = cellvalue.RowRefList(refs)
		case col.Type.IsStorable():
			cell, err := svc.dao.CellGet(rowID, col.ID)
			if err != nil {
				return nil, nil, nil, err
			}
			if cell == nil {
				vals[col.ID] = cellvalue.Null()
				continue
			}
			value, err := cell.Value()
			if err != nil {
				vals[col.ID] = cellvalue.Text(cellvalue.SentinelError)
				continue
			}
			vals[col.ID] = value
		default:
			vals[col.ID] = cellvalue.Null()
		}
	}

	// 第二遍：聚合列，依赖第一遍的关联边
	for _, col := range cols {
		if col.Type == model.ColumnRollup {
			vals[col.ID] = svc.resolveRollup(rctx, cols, vals, col)
		}
	}

	// 第三遍：公式列，可引用前两遍的任何结果
	for _, col := range cols {
		if col.Type == model.ColumnFormula {
			vals[col.ID] = svc.resolveFormula(cols, vals, col)
		}
	}

	// 第四遍：查找列
	for _, col := range cols {
		if col.Type == model.ColumnLookup {
			vals[col.ID] = svc.resolveLookup(rctx, cols, vals, col)
		}
	}

	return row, cols, vals, nil
}

// columnByID 在已加载的列定义里按 ID 查找
func columnByID(cols []*model.Column, id int64) *model.Column {
	for _, col := range cols {
		if col.ID == id {
			return col
		}
	}
	return nil
}

// resolveFormula evaluates the column expression against every resolved
// value in the row. Each value is bound twice, by column name and by column
// ID string, so renames do not break ID based references.
// resolveFormula 对整行已解析的值求公式，列名与列 ID 串各绑定一次。
func (svc *Service) resolveFormula(cols []*model.Column, vals map[int64]cellvalue.Value, col *model.Column) cellvalue.Value {
	env := make(map[string]cellvalue.Value, len(cols)*2)
	for _, c := range cols {
		if c.ID == col.ID {
			continue
		}
		if v, ok := vals[c.ID]; ok {
			env[c.Name] = v
			env[strconv.FormatInt(c.ID, 10)] = v
		}
	}

	value, err := formula.Evaluate(col.Expression, env)
	if err != nil {
		return cellvalue.Text(cellvalue.SentinelError)
	}
	return value
}
