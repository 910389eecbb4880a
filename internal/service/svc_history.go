package service

import (
	"strconv"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/diff"
	"github.com/papyrus-notes/table-engine/pkg/logger"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// HistoryEntry 历史快照的服务层视图
type HistoryEntry struct {
	ID            int64      `json:"id"`
	EntityType    string     `json:"entityType"`
	EntityID      int64      `json:"entityId"`
	Version       int64      `json:"version"`
	Before        string     `json:"before"`
	After         string     `json:"after"`
	ChangedFields []string   `json:"changedFields"`
	AuthorUID     int64      `json:"authorUid"`
	CreatedAt     timex.Time `json:"createdAt"`
}

// recordSnapshot appends one immutable history entry. Version is the
// current maximum plus one; callers serialize through lockEntity so two
// concurrent mutations cannot pick the same number.
// recordSnapshot 追加一条不可变历史，版本号取当前最大值加一，
// 调用方经 lockEntity 串行化保证不重号。
func (svc *Service) recordSnapshot(entityType model.HistoryEntity, entityID int64, before, after map[string]any, changed []string, authorUID int64) error {
	maxVersion, err := svc.dao.HistoryMaxVersion(entityType, entityID)
	if err != nil {
		return err
	}

	beforeJSON, err := sonic.Marshal(before)
	if err != nil {
		return err
	}
	afterJSON, err := sonic.Marshal(after)
	if err != nil {
		return err
	}
	changedJSON, err := sonic.Marshal(changed)
	if err != nil {
		return err
	}

	m := &model.HistorySnapshot{
		EntityType:    entityType,
		EntityID:      entityID,
		Version:       maxVersion + 1,
		Before:        string(beforeJSON),
		After:         string(afterJSON),
		ChangedFields: string(changedJSON),
		AuthorUID:     authorUID,
	}
	if err := svc.dao.HistoryCreate(m); err != nil {
		return err
	}

	svc.log.Debug("history recorded",
		zap.String("entityType", string(entityType)),
		zap.Int64(logger.FieldEntityID, entityID),
		zap.Int64(logger.FieldVersion, m.Version),
		zap.Int64(logger.FieldUID, authorUID))
	return nil
}

// ListHistory 按版本号倒序分页返回某实体的历史
func (svc *Service) ListHistory(entityType model.HistoryEntity, entityID int64, limit, offset int) ([]*HistoryEntry, int64, error) {
	snapshots, total, err := svc.dao.HistoryList(entityType, entityID, limit, offset)
	if err != nil {
		return nil, 0, code.ErrorStorage.WithDetails(err.Error())
	}

	entries := make([]*HistoryEntry, 0, len(snapshots))
	for _, s := range snapshots {
		entries = append(entries, historyEntry(s))
	}
	return entries, total, nil
}

func historyEntry(s *model.HistorySnapshot) *HistoryEntry {
	var changed []string
	_ = sonic.Unmarshal([]byte(s.ChangedFields), &changed)
	return &HistoryEntry{
		ID:            s.ID,
		EntityType:    string(s.EntityType),
		EntityID:      s.EntityID,
		Version:       s.Version,
		Before:        s.Before,
		After:         s.After,
		ChangedFields: changed,
		AuthorUID:     s.AuthorUID,
		CreatedAt:     s.CreatedAt,
	}
}

// RevertToVersion restores the entity to the after-state of the given
// version by replaying it through the normal mutation path. The revert is
// itself a new version, so history stays append only and a revert can be
// reverted.
// RevertToVersion 取目标版本的 after 状态经正常写入路径回放，
// 回退本身产生新版本，历史保持只追加。
func (svc *Service) RevertToVersion(entityType model.HistoryEntity, entityID, version int64, actingUID int64) error {
	snapshot, err := svc.dao.HistoryGetByVersion(entityType, entityID, version)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if snapshot == nil {
		return code.ErrorNotFoundVersion
	}

	var state map[string]any
	if err := sonic.Unmarshal([]byte(snapshot.After), &state); err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}

	switch entityType {
	case model.HistoryRow:
		return svc.revertRow(entityID, state, actingUID)
	case model.HistoryNote:
		return svc.revertNote(entityID, state, actingUID)
	}
	return code.ErrorInvalidParams.WithDetails("unknown entity type " + string(entityType))
}

// revertRow 将行状态回放为目标快照：先恢复软删除，再按列逐项覆写
func (svc *Service) revertRow(rowID int64, state map[string]any, actingUID int64) error {
	row, err := svc.dao.RowGetById(rowID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if row == nil {
		return code.ErrorNotFoundRow
	}

	if row.IsDeleted() {
		if err := svc.RowRestore(rowID, actingUID); err != nil {
			return err
		}
	}

	cols, err := svc.dao.ColumnListByDatabase(row.DatabaseID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}

	// 快照键是列 ID 串。目标状态缺失的存储列要显式清空。
	values := make(map[string]any, len(cols))
	for _, col := range cols {
		if col.Type.IsDerived() {
			continue
		}
		key := strconv.FormatInt(col.ID, 10)
		if v, ok := state[key]; ok {
			values[key] = v
		} else {
			values[key] = nil
		}
	}

	return svc.RowUpdate(rowID, values, actingUID)
}

// UndoLastChange reverts the entity to the version just before its latest
// one. An entity with fewer than two versions has nothing to undo.
// UndoLastChange 回退到倒数第二个版本，不足两个版本时无可撤销。
func (svc *Service) UndoLastChange(entityType model.HistoryEntity, entityID int64, actingUID int64) error {
	latest, err := svc.dao.HistoryLatest(entityType, entityID, 2)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if len(latest) < 2 {
		return code.ErrorNothingToUndo
	}
	return svc.RevertToVersion(entityType, entityID, latest[1].Version, actingUID)
}

// HistoryDiff renders a readable diff between the after-states of two
// versions. fromVersion 0 means the empty state before the entity existed.
// HistoryDiff 渲染两个版本 after 状态之间的可读差异，fromVersion 为 0 表示空状态。
func (svc *Service) HistoryDiff(entityType model.HistoryEntity, entityID, fromVersion, toVersion int64) (string, error) {
	to, err := svc.dao.HistoryGetByVersion(entityType, entityID, toVersion)
	if err != nil {
		return "", code.ErrorStorage.WithDetails(err.Error())
	}
	if to == nil {
		return "", code.ErrorNotFoundVersion
	}

	fromState := "{}"
	if fromVersion > 0 {
		from, err := svc.dao.HistoryGetByVersion(entityType, entityID, fromVersion)
		if err != nil {
			return "", code.ErrorStorage.WithDetails(err.Error())
		}
		if from == nil {
			return "", code.ErrorNotFoundVersion
		}
		fromState = from.After
	}
	return diff.Pretty(fromState, to.After), nil
}
