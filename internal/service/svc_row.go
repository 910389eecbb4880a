package service

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/logger"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// Row 行的服务层视图，Values 以列名为键、值为已解析的原生值
type Row struct {
	ID             int64          `json:"id"`
	DatabaseID     int64          `json:"databaseId"`
	Position       int64          `json:"position"`
	RecurrenceRule string         `json:"recurrenceRule,omitempty"`
	Deleted        bool           `json:"deleted"`
	Values         map[string]any `json:"values"`
	CreatedAt      timex.Time     `json:"createdAt"`
	UpdatedAt      timex.Time     `json:"updatedAt"`
}

// 状态快照里软删除标记的键名，不与列 ID 冲突
const deletedStateKey = "_deleted"

// RowAdd inserts a row with its cells, relation links and history snapshot
// in one transaction. Validation and authorization happen before anything
// is written; any failure leaves no partial row behind.
// RowAdd 在单个事务内插入行、单元格、关联边与历史快照，
// 校验与鉴权先行，任何失败都不会留下半行数据。
func (svc *Service) RowAdd(databaseID int64, values map[string]any, actingUID int64) (int64, error) {
	db, err := svc.dao.DatabaseGetById(databaseID)
	if err != nil {
		return 0, code.ErrorStorage.WithDetails(err.Error())
	}
	if db == nil {
		return 0, code.ErrorNotFoundDatabase
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, databaseID, model.LevelWrite)
	if err != nil {
		return 0, code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return 0, code.ErrorPermissionDenied
	}

	cols, err := svc.dao.ColumnListByDatabase(databaseID)
	if err != nil {
		return 0, code.ErrorStorage.WithDetails(err.Error())
	}

	writes, verr := svc.prepareWrites(cols, values, 0)
	if verr != nil {
		return 0, verr
	}

	var rowID int64
	err = svc.dao.Tx(func(tx *dao.Dao) error {
		row, err := tx.RowCreate(databaseID, "")
		if err != nil {
			return err
		}
		rowID = row.ID

		for _, w := range writes {
			if err := svc.applyWrite(tx, row, w); err != nil {
				return err
			}
		}

		after, err := storedState(tx, rowID, cols)
		if err != nil {
			return err
		}
		return svc.withTx(tx).recordSnapshot(model.HistoryRow, rowID, map[string]any{}, after, changedKeys(writes), actingUID)
	})
	if err != nil {
		if c, ok := err.(*code.Code); ok {
			return 0, c
		}
		return 0, code.ErrorStorage.WithDetails(err.Error())
	}

	svc.log.Info("row added",
		zap.Int64(logger.FieldDatabaseID, databaseID),
		zap.Int64(logger.FieldRowID, rowID),
		zap.Int64(logger.FieldUID, actingUID))
	return rowID, nil
}

// RowUpdate applies only the keys present in values that differ from the
// stored state, recording a before/after diff. Relation updates replace the
// whole link set of that column.
// RowUpdate 仅写入 values 中出现且与当前状态不同的字段并记录前后差异，
// 关联列更新整体替换该列的关联边集合。
func (svc *Service) RowUpdate(rowID int64, values map[string]any, actingUID int64) error {
	row, err := svc.dao.RowGetById(rowID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if row == nil {
		return code.ErrorNotFoundRow
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, row.DatabaseID, model.LevelWrite)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	cols, err := svc.dao.ColumnListByDatabase(row.DatabaseID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}

	writes, verr := svc.prepareWrites(cols, values, rowID)
	if verr != nil {
		return verr
	}

	lock := lockEntity(model.HistoryRow, rowID)
	lock.Lock()
	defer lock.Unlock()

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		before, err := storedState(tx, rowID, cols)
		if err != nil {
			return err
		}

		// 只落与当前值不同的字段
		changed := writes[:0:0]
		for _, w := range writes {
			key := strconv.FormatInt(w.col.ID, 10)
			if sameValue(before[key], w.value) {
				continue
			}
			changed = append(changed, w)
		}
		if len(changed) == 0 {
			return nil
		}

		for _, w := range changed {
			if err := svc.applyWrite(tx, row, w); err != nil {
				return err
			}
		}
		if err := tx.RowTouch(rowID); err != nil {
			return err
		}

		after, err := storedState(tx, rowID, cols)
		if err != nil {
			return err
		}
		return svc.withTx(tx).recordSnapshot(model.HistoryRow, rowID, before, after, changedKeys(changed), actingUID)
	})
	if err != nil {
		if c, ok := err.(*code.Code); ok {
			return c
		}
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

// RowDelete 软删除行并移除其两个方向上的全部关联边
func (svc *Service) RowDelete(rowID int64, actingUID int64) error {
	row, err := svc.dao.RowGetById(rowID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if row == nil {
		return code.ErrorNotFoundRow
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, row.DatabaseID, model.LevelWrite)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	cols, err := svc.dao.ColumnListByDatabase(row.DatabaseID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}

	lock := lockEntity(model.HistoryRow, rowID)
	lock.Lock()
	defer lock.Unlock()

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		before, err := storedState(tx, rowID, cols)
		if err != nil {
			return err
		}

		// 删除行发出的边及其镜像，再删除指向该行的边
		for _, col := range cols {
			if col.Type != model.ColumnRelation {
				continue
			}
			if col.InverseColumnID != 0 {
				if err := tx.LinkDeleteMirror(col.InverseColumnID, rowID); err != nil {
					return err
				}
			}
		}
		if err := tx.LinkDeleteByRow(rowID); err != nil {
			return err
		}
		if err := tx.LinkDeleteTargeting(model.LinkToRow, rowID); err != nil {
			return err
		}

		if err := tx.RowMarkDeleted(rowID, actingUID); err != nil {
			return err
		}

		after := map[string]any{}
		for k, v := range before {
			after[k] = v
		}
		after[deletedStateKey] = true
		return svc.withTx(tx).recordSnapshot(model.HistoryRow, rowID, before, after, []string{deletedStateKey}, actingUID)
	})
	if err != nil {
		if c, ok := err.(*code.Code); ok {
			return c
		}
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

// RowRestore clears both soft-delete fields. Restore is exactly this
// operation, not a generic update.
// RowRestore 显式清空两个软删除字段，恢复不是普通更新。
func (svc *Service) RowRestore(rowID int64, actingUID int64) error {
	row, err := svc.dao.RowGetById(rowID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if row == nil {
		return code.ErrorNotFoundRow
	}
	if !row.IsDeleted() {
		return nil
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectDatabase, row.DatabaseID, model.LevelWrite)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	cols, err := svc.dao.ColumnListByDatabase(row.DatabaseID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}

	lock := lockEntity(model.HistoryRow, rowID)
	lock.Lock()
	defer lock.Unlock()

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		before, err := storedState(tx, rowID, cols)
		if err != nil {
			return err
		}
		before[deletedStateKey] = true

		if err := tx.RowClearDeleted(rowID); err != nil {
			return err
		}

		after, err := storedState(tx, rowID, cols)
		if err != nil {
			return err
		}
		return svc.withTx(tx).recordSnapshot(model.HistoryRow, rowID, before, after, []string{deletedStateKey}, actingUID)
	})
	if err != nil {
		if c, ok := err.(*code.Code); ok {
			return c
		}
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

// cellWrite 一次准备好的单元格或关联写入
type cellWrite struct {
	col   *model.Column
	value cellvalue.Value
}

// prepareWrites resolves incoming keys to columns, coerces the values and
// runs validation. Derived-column keys are skipped: their value only exists
// at read time.
// prepareWrites 将入参键解析为列并做类型转换与规则校验，
// 派生列的键直接跳过。
func (svc *Service) prepareWrites(cols []*model.Column, values map[string]any, currentRowID int64) ([]cellWrite, error) {
	var writes []cellWrite
	var msgs []string

	for key, raw := range values {
		if strings.HasPrefix(key, "_") {
			continue
		}
		col := resolveColumnKey(cols, key)
		if col == nil {
			return nil, code.ErrorNotFoundColumn.WithDetails("unknown column " + key)
		}
		if col.Type.IsDerived() {
			continue
		}

		value, err := coerceValue(col, raw)
		if err != nil {
			msgs = append(msgs, err.Error())
			continue
		}

		rules, err := col.ParseRules()
		if err != nil {
			msgs = append(msgs, col.Name+" has unreadable validation rules")
			continue
		}
		msgs = append(msgs, Validate(value, rules, col, currentRowID, svc.dao)...)

		if col.Type == model.ColumnRelation {
			if verr := svc.checkRelationTargets(col, value.RowRefs()); verr != nil {
				return nil, verr
			}
		}

		writes = append(writes, cellWrite{col: col, value: value})
	}

	if len(msgs) > 0 {
		return nil, code.ErrorValidationFailed.WithDetails(msgs...)
	}
	return writes, nil
}

// checkRelationTargets 校验关联目标的存在性与种类匹配
func (svc *Service) checkRelationTargets(col *model.Column, refs []int64) error {
	for _, id := range refs {
		switch col.RelationTarget {
		case model.RelationToNote:
			note, err := svc.dao.NoteGetById(id)
			if err != nil {
				return code.ErrorStorage.WithDetails(err.Error())
			}
			if note == nil {
				return code.ErrorRelationTarget.WithDetails("note " + strconv.FormatInt(id, 10) + " does not exist")
			}
		case model.RelationToDatabase:
			target, err := svc.dao.RowGetById(id)
			if err != nil {
				return code.ErrorStorage.WithDetails(err.Error())
			}
			if target == nil || target.DatabaseID != col.RelationDatabaseID {
				return code.ErrorRelationTarget.WithDetails("row " + strconv.FormatInt(id, 10) + " is not in the linked database")
			}
		default:
			return code.ErrorColumnConfig.WithDetails("relation column " + col.Name + " has no target kind")
		}
	}
	return nil
}

// applyWrite 落一个准备好的写入：普通列写单元格，关联列整体替换边集合
func (svc *Service) applyWrite(tx *dao.Dao, row *model.Row, w cellWrite) error {
	// 派生列永不落库，入参层已跳过，这里兜底保护不变量
	if w.col.Type.IsDerived() {
		return code.ErrorStoredDerived
	}
	if w.col.Type != model.ColumnRelation {
		return tx.CellUpsert(row.ID, w.col.ID, w.value)
	}

	// 先清掉旧边与镜像
	if w.col.InverseColumnID != 0 {
		if err := tx.LinkDeleteMirror(w.col.InverseColumnID, row.ID); err != nil {
			return err
		}
	}
	if err := tx.LinkDeleteBySource(row.ID, w.col.ID); err != nil {
		return err
	}

	targetKind := model.LinkToRow
	if w.col.RelationTarget == model.RelationToNote {
		targetKind = model.LinkToNote
	}

	for i, id := range w.value.RowRefs() {
		if err := tx.LinkCreate(row.ID, w.col.ID, targetKind, id, int64(i)+1); err != nil {
			return err
		}
		// 镜像边与正向边同事务写入，保持反向列对称
		if w.col.InverseColumnID != 0 && targetKind == model.LinkToRow {
			pos, err := tx.LinkMaxPosition(id, w.col.InverseColumnID)
			if err != nil {
				return err
			}
			if err := tx.LinkCreate(id, w.col.InverseColumnID, model.LinkToRow, row.ID, pos+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveColumnKey 以列名或列 ID 字符串解析入参键
func resolveColumnKey(cols []*model.Column, key string) *model.Column {
	for _, col := range cols {
		if col.Name == key {
			return col
		}
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		for _, col := range cols {
			if col.ID == id {
				return col
			}
		}
	}
	return nil
}

// coerceValue 将宿主传入的原生值转换为该列的标签值并做类型匹配
func coerceValue(col *model.Column, raw any) (cellvalue.Value, error) {
	value, err := cellvalue.FromAny(raw)
	if err != nil {
		return cellvalue.Null(), err
	}
	if value.IsNull() {
		return value, nil
	}

	expected := col.Type.ValueKind()
	if value.Kind() == expected {
		return value, nil
	}

	// 单个关联 ID 允许以数字传入
	if expected == cellvalue.KindRowRefList && value.Kind() == cellvalue.KindNumber {
		return cellvalue.RowRefList([]int64{int64(value.Number())}), nil
	}
	// 空列表的标签在 text/ref 之间无法区分，按列类型归位
	if expected == cellvalue.KindRowRefList && value.Kind() == cellvalue.KindStringList && len(value.Strings()) == 0 {
		return cellvalue.RowRefList(nil), nil
	}

	return cellvalue.Null(), code.ErrorInvalidParams.WithDetails(
		col.Name + " expects a " + string(expected) + " value, got " + string(value.Kind()))
}

// storedState 汇集一行的全部存储态（单元格与关联边），键为列 ID 字符串
func storedState(tx *dao.Dao, rowID int64, cols []*model.Column) (map[string]any, error) {
	state := map[string]any{}
	for _, col := range cols {
		key := strconv.FormatInt(col.ID, 10)
		switch {
		case col.Type == model.ColumnRelation:
			links, err := tx.LinksBySource(rowID, col.ID)
			if err != nil {
				return nil, err
			}
			refs := make([]int64, 0, len(links))
			for _, link := range links {
				refs = append(refs, link.TargetID)
			}
			if len(refs) > 0 {
				state[key] = refs
			}
		case col.Type.IsStorable():
			cell, err := tx.CellGet(rowID, col.ID)
			if err != nil {
				return nil, err
			}
			if cell == nil {
				continue
			}
			value, err := cell.Value()
			if err != nil {
				return nil, err
			}
			if !value.IsNull() {
				state[key] = value.Interface()
			}
		}
	}
	return state, nil
}

// sameValue 判断快照态与新值是否等价（经 JSON 规范化比较）
func sameValue(existing any, value cellvalue.Value) bool {
	if existing == nil {
		return value.IsNull()
	}
	a, err := sonic.Marshal(existing)
	if err != nil {
		return false
	}
	b, err := sonic.Marshal(value.Interface())
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// changedKeys 提取写入集的列 ID 键
func changedKeys(writes []cellWrite) []string {
	keys := make([]string, 0, len(writes))
	for _, w := range writes {
		keys = append(keys, strconv.FormatInt(w.col.ID, 10))
	}
	return keys
}
