package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
)

func TestNoteLifecycleWithHistory(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "alice")

	noteID, err := svc.NoteCreate("Reading list", &uid, uid) // v1
	require.NoError(t, err)

	require.NoError(t, svc.NoteUpdate(noteID, map[string]any{"title": "Reading list 2026", "isPinned": true}, uid)) // v2

	note, err := svc.dao.NoteGetById(noteID)
	require.NoError(t, err)
	assert.Equal(t, "Reading list 2026", note.Title)
	assert.True(t, note.IsPinned)

	// 撤销回到初始标题
	require.NoError(t, svc.UndoLastChange(model.HistoryNote, noteID, uid))
	note, err = svc.dao.NoteGetById(noteID)
	require.NoError(t, err)
	assert.Equal(t, "Reading list", note.Title)
	assert.False(t, note.IsPinned)

	// 未知字段拒绝
	err = svc.NoteUpdate(noteID, map[string]any{"ownerUid": 99}, uid)
	require.Error(t, err)
	c, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorInvalidParams.Code(), c.Code())
}

// 删除笔记时指向它的关联边被移除，恢复不会再生边
func TestNoteDeleteDropsIncomingLinks(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "bob")

	noteID, err := svc.NoteCreate("Linked", &uid, uid)
	require.NoError(t, err)

	dbID := mustDatabase(t, svc, "Refs", uid)
	noteRel := mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:           "Note",
		Type:           model.ColumnRelation,
		RelationTarget: model.RelationToNote,
	}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Note": noteID}, uid)

	links, err := svc.dao.LinksBySource(rowID, noteRel.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)

	require.NoError(t, svc.NoteDelete(noteID, uid))

	links, err = svc.dao.LinksBySource(rowID, noteRel.ID)
	require.NoError(t, err)
	assert.Empty(t, links)

	require.NoError(t, svc.NoteRestore(noteID, uid))
	links, err = svc.dao.LinksBySource(rowID, noteRel.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

// 通过笔记关联投影伪字段
func TestNoteLookupProjection(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "carol")

	n1, err := svc.NoteCreate("First", &uid, uid)
	require.NoError(t, err)
	n2, err := svc.NoteCreate("Second", &uid, uid)
	require.NoError(t, err)

	dbID := mustDatabase(t, svc, "Index", uid)
	noteRel := mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:           "Notes",
		Type:           model.ColumnRelation,
		RelationTarget: model.RelationToNote,
	}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:                   "Titles",
		Type:                   model.ColumnLookup,
		LookupRelationColumnID: noteRel.ID,
		LookupTargetField:      "title",
		LookupMultiplicity:     model.LookupListUniqueStrings,
	}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:                   "FirstTitle",
		Type:                   model.ColumnLookup,
		LookupRelationColumnID: noteRel.ID,
		LookupTargetField:      "title",
		LookupMultiplicity:     model.LookupFirst,
	}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Notes": []int64{n1, n2}}, uid)
	row := mustGet(t, svc, rowID)
	assert.Equal(t, "First, Second", row.Values["Titles"])
	assert.Equal(t, "First", row.Values["FirstTitle"])
}
