package service

import (
	"go.uber.org/zap"

	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
	"github.com/papyrus-notes/table-engine/pkg/logger"
)

// 笔记实体可经历史回放的字段。键与 NoteUpdate 入参及快照状态一致。
var noteStateFields = map[string]bool{
	"title":       true,
	"content":     true,
	"type":        true,
	"folderId":    true,
	"workspaceId": true,
	"isPinned":    true,
	"isArchived":  true,
}

// noteColumnNames 快照键到数据库列名的映射
var noteColumnNames = map[string]string{
	"title":       "title",
	"content":     "content",
	"type":        "type",
	"folderId":    "folder_id",
	"workspaceId": "workspace_id",
	"isPinned":    "is_pinned",
	"isArchived":  "is_archived",
}

// NoteCreate 创建笔记并记录初始快照
func (svc *Service) NoteCreate(title string, ownerUID *int64, actingUID int64) (int64, error) {
	if title == "" {
		return 0, code.ErrorInvalidParams.WithDetails("note title is required")
	}

	var noteID int64
	err := svc.dao.Tx(func(tx *dao.Dao) error {
		note, err := tx.NoteCreate(&model.Note{Title: title, OwnerUID: ownerUID})
		if err != nil {
			return err
		}
		noteID = note.ID
		after := noteState(note)
		return svc.withTx(tx).recordSnapshot(model.HistoryNote, noteID, map[string]any{}, after, stateKeys(after), actingUID)
	})
	if err != nil {
		return 0, code.ErrorStorage.WithDetails(err.Error())
	}

	svc.log.Info("note created",
		zap.Int64(logger.FieldEntityID, noteID),
		zap.Int64(logger.FieldUID, actingUID))
	return noteID, nil
}

// NoteUpdate applies the given fields to a note and records a snapshot.
// Unknown field keys are rejected so snapshots stay replayable.
// NoteUpdate 更新笔记字段并记录快照，未知字段键直接拒绝。
func (svc *Service) NoteUpdate(noteID int64, fields map[string]any, actingUID int64) error {
	note, err := svc.dao.NoteGetById(noteID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if note == nil {
		return code.ErrorNotFoundNote
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectNote, noteID, model.LevelWrite)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	updates := map[string]any{}
	var changed []string
	for key, v := range fields {
		if !noteStateFields[key] {
			return code.ErrorInvalidParams.WithDetails("unknown note field " + key)
		}
		updates[noteColumnNames[key]] = v
		changed = append(changed, key)
	}
	if len(updates) == 0 {
		return nil
	}

	lock := lockEntity(model.HistoryNote, noteID)
	lock.Lock()
	defer lock.Unlock()

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		before := noteState(note)
		if err := tx.NoteUpdateFields(noteID, updates); err != nil {
			return err
		}
		updated, err := tx.NoteGetById(noteID)
		if err != nil {
			return err
		}
		return svc.withTx(tx).recordSnapshot(model.HistoryNote, noteID, before, noteState(updated), changed, actingUID)
	})
	if err != nil {
		if c, ok := err.(*code.Code); ok {
			return c
		}
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

// NoteDelete 软删除笔记并移除指向它的关联边
func (svc *Service) NoteDelete(noteID int64, actingUID int64) error {
	note, err := svc.dao.NoteGetById(noteID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if note == nil {
		return code.ErrorNotFoundNote
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectNote, noteID, model.LevelWrite)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	lock := lockEntity(model.HistoryNote, noteID)
	lock.Lock()
	defer lock.Unlock()

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		before := noteState(note)
		if err := tx.LinkDeleteTargeting(model.LinkToNote, noteID); err != nil {
			return err
		}
		if err := tx.NoteMarkDeleted(noteID, actingUID); err != nil {
			return err
		}
		after := map[string]any{}
		for k, v := range before {
			after[k] = v
		}
		after[deletedStateKey] = true
		return svc.withTx(tx).recordSnapshot(model.HistoryNote, noteID, before, after, []string{deletedStateKey}, actingUID)
	})
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

// NoteRestore 显式清空笔记的软删除标记
func (svc *Service) NoteRestore(noteID int64, actingUID int64) error {
	note, err := svc.dao.NoteGetById(noteID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if note == nil {
		return code.ErrorNotFoundNote
	}
	if note.DeletedAt == nil {
		return nil
	}

	ok, err := svc.CheckPermission(actingUID, model.ObjectNote, noteID, model.LevelWrite)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if !ok {
		return code.ErrorPermissionDenied
	}

	lock := lockEntity(model.HistoryNote, noteID)
	lock.Lock()
	defer lock.Unlock()

	err = svc.dao.Tx(func(tx *dao.Dao) error {
		before := noteState(note)
		before[deletedStateKey] = true
		if err := tx.NoteClearDeleted(noteID); err != nil {
			return err
		}
		return svc.withTx(tx).recordSnapshot(model.HistoryNote, noteID, before, noteState(note), []string{deletedStateKey}, actingUID)
	})
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	return nil
}

// revertNote 将笔记字段回放为目标快照状态
func (svc *Service) revertNote(noteID int64, state map[string]any, actingUID int64) error {
	note, err := svc.dao.NoteGetById(noteID)
	if err != nil {
		return code.ErrorStorage.WithDetails(err.Error())
	}
	if note == nil {
		return code.ErrorNotFoundNote
	}

	if note.DeletedAt != nil {
		if err := svc.NoteRestore(noteID, actingUID); err != nil {
			return err
		}
	}

	fields := map[string]any{}
	for key := range noteStateFields {
		if v, ok := state[key]; ok {
			fields[key] = v
		}
	}
	return svc.NoteUpdate(noteID, fields, actingUID)
}

// noteState 提取笔记的可回放状态
func noteState(n *model.Note) map[string]any {
	return map[string]any{
		"title":       n.Title,
		"content":     n.Content,
		"type":        n.Type,
		"folderId":    n.FolderID,
		"workspaceId": n.WorkspaceID,
		"isPinned":    n.IsPinned,
		"isArchived":  n.IsArchived,
	}
}

func stateKeys(state map[string]any) []string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	return keys
}
