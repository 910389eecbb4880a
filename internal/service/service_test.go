package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/papyrus-notes/table-engine/global"
	"github.com/papyrus-notes/table-engine/internal/dao"
)

// newTestService 基于独立内存库构建引擎，每个测试互不串库
func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := dao.NewDBEngine(global.Database{Path: ":memory:", MaxIdleConns: 1, MaxOpenConns: 1})
	require.NoError(t, err)

	svc := New(db, context.Background())
	require.NoError(t, svc.AutoMigrate())
	return svc
}

// newTestUser 建一个普通用户并返回 UID
func newTestUser(t *testing.T, svc *Service, name string) int64 {
	t.Helper()
	u, err := svc.dao.UserCreate(name, name+"@example.com", false)
	require.NoError(t, err)
	return u.UID
}

// mustDatabase 建一个带所有者的数据表
func mustDatabase(t *testing.T, svc *Service, name string, ownerUID int64) int64 {
	t.Helper()
	db, err := svc.DatabaseCreate(name, &ownerUID, false)
	require.NoError(t, err)
	return db.ID
}

// mustColumn 建一列，失败即终止
func mustColumn(t *testing.T, svc *Service, databaseID int64, params *ColumnCreateParams, uid int64) *Column {
	t.Helper()
	col, err := svc.ColumnCreate(databaseID, params, uid)
	require.NoError(t, err)
	return col
}

func mustRow(t *testing.T, svc *Service, databaseID int64, values map[string]any, uid int64) int64 {
	t.Helper()
	id, err := svc.RowAdd(databaseID, values, uid)
	require.NoError(t, err)
	return id
}

// mustColumnID 按名取列 ID
func mustColumnID(t *testing.T, svc *Service, databaseID int64, name string) int64 {
	t.Helper()
	col, err := svc.dao.ColumnGetByName(databaseID, name)
	require.NoError(t, err)
	require.NotNil(t, col)
	return col.ID
}

func strPtr(s string) *string {
	return &s
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func mustGet(t *testing.T, svc *Service, rowID int64) *Row {
	t.Helper()
	row, err := svc.RowGet(rowID)
	require.NoError(t, err)
	require.NotNil(t, row)
	return row
}
