package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/code"
)

// 每次变更版本号单调加一，历史只追加
func TestHistoryVersionsMonotonic(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "alice")
	dbID := mustDatabase(t, svc, "Docs", uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Body", Type: model.ColumnText}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Body": "v1"}, uid)
	require.NoError(t, svc.RowUpdate(rowID, map[string]any{"Body": "v2"}, uid))
	require.NoError(t, svc.RowUpdate(rowID, map[string]any{"Body": "v3"}, uid))

	entries, total, err := svc.ListHistory(model.HistoryRow, rowID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)

	// 倒序返回
	assert.Equal(t, int64(3), entries[0].Version)
	assert.Equal(t, int64(2), entries[1].Version)
	assert.Equal(t, int64(1), entries[2].Version)
}

// 回退链路：revert(v) 再 revert(v-1) 回到等价可观察状态，
// 且每次回退都产生新的更高版本号
func TestRevertChain(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "bob")
	dbID := mustDatabase(t, svc, "Docs", uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Body", Type: model.ColumnText}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Body": "first"}, uid)            // v1
	require.NoError(t, svc.RowUpdate(rowID, map[string]any{"Body": "second"}, uid)) // v2

	require.NoError(t, svc.RevertToVersion(model.HistoryRow, rowID, 1, uid)) // v3
	assert.Equal(t, "first", mustGet(t, svc, rowID).Values["Body"])

	require.NoError(t, svc.RevertToVersion(model.HistoryRow, rowID, 2, uid)) // v4
	assert.Equal(t, "second", mustGet(t, svc, rowID).Values["Body"])

	maxVersion, err := svc.dao.HistoryMaxVersion(model.HistoryRow, rowID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), maxVersion)
}

func TestRevertRestoresDeletedRow(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "carol")
	dbID := mustDatabase(t, svc, "Docs", uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Body", Type: model.ColumnText}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Body": "alive"}, uid) // v1
	require.NoError(t, svc.RowDelete(rowID, uid))                        // v2

	require.NoError(t, svc.RevertToVersion(model.HistoryRow, rowID, 1, uid))

	m, err := svc.dao.RowGetById(rowID)
	require.NoError(t, err)
	assert.False(t, m.IsDeleted())
	assert.Equal(t, "alive", mustGet(t, svc, rowID).Values["Body"])
}

// 少于两个版本时撤销报“没有可撤销的变更”
func TestUndoLastChange(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "dave")
	dbID := mustDatabase(t, svc, "Docs", uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Body", Type: model.ColumnText}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Body": "only"}, uid)

	err := svc.UndoLastChange(model.HistoryRow, rowID, uid)
	require.Error(t, err)
	c, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorNothingToUndo.Code(), c.Code())

	require.NoError(t, svc.RowUpdate(rowID, map[string]any{"Body": "changed"}, uid))
	require.NoError(t, svc.UndoLastChange(model.HistoryRow, rowID, uid))
	assert.Equal(t, "only", mustGet(t, svc, rowID).Values["Body"])
}

// 回退版本不存在
func TestRevertUnknownVersion(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "erin")
	dbID := mustDatabase(t, svc, "Docs", uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Body", Type: model.ColumnText}, uid)
	rowID := mustRow(t, svc, dbID, map[string]any{"Body": "x"}, uid)

	err := svc.RevertToVersion(model.HistoryRow, rowID, 99, uid)
	require.Error(t, err)
	c, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorNotFoundVersion.Code(), c.Code())
}

// 历史差异渲染包含变更前后的内容片段
func TestHistoryDiff(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "frank")
	dbID := mustDatabase(t, svc, "Docs", uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Body", Type: model.ColumnText}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Body": "hello"}, uid)
	require.NoError(t, svc.RowUpdate(rowID, map[string]any{"Body": "goodbye"}, uid))

	out, err := svc.HistoryDiff(model.HistoryRow, rowID, 1, 2)
	require.NoError(t, err)
	assert.Contains(t, out, "goodbye")

	out, err = svc.HistoryDiff(model.HistoryRow, rowID, 0, 1)
	require.NoError(t, err)
	assert.Contains(t, out, "hello")

	_, err = svc.HistoryDiff(model.HistoryRow, rowID, 1, 99)
	assert.Equal(t, code.ErrorNotFoundVersion.Code(), errCode(t, err))
}
