package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/rollup"
)

// 任务/项目场景：三条任务 Done = [true, false, true] 全部挂在一个项目下，
// 项目的 COUNT_CHECKED 汇总必须等于 2
func TestRollupCountCheckedAcrossDatabases(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "alice")

	tasksID := mustDatabase(t, svc, "Tasks", uid)
	projectsID := mustDatabase(t, svc, "Projects", uid)

	mustColumn(t, svc, tasksID, &ColumnCreateParams{Name: "Title", Type: model.ColumnText}, uid)
	mustColumn(t, svc, tasksID, &ColumnCreateParams{Name: "Done", Type: model.ColumnBoolean}, uid)

	relCol := mustColumn(t, svc, projectsID, &ColumnCreateParams{
		Name:               "Tasks",
		Type:               model.ColumnRelation,
		RelationTarget:     model.RelationToDatabase,
		RelationDatabaseID: tasksID,
	}, uid)

	doneCol, err := svc.dao.ColumnGetByName(tasksID, "Done")
	require.NoError(t, err)

	mustColumn(t, svc, projectsID, &ColumnCreateParams{
		Name:                   "DoneCount",
		Type:                   model.ColumnRollup,
		RollupRelationColumnID: relCol.ID,
		RollupTargetColumnID:   doneCol.ID,
		RollupFunc:             rollup.CountChecked,
	}, uid)

	t1 := mustRow(t, svc, tasksID, map[string]any{"Title": "a", "Done": true}, uid)
	t2 := mustRow(t, svc, tasksID, map[string]any{"Title": "b", "Done": false}, uid)
	t3 := mustRow(t, svc, tasksID, map[string]any{"Title": "c", "Done": true}, uid)

	project := mustRow(t, svc, projectsID, map[string]any{"Tasks": []int64{t1, t2, t3}}, uid)

	row := mustGet(t, svc, project)
	assert.Equal(t, float64(2), row.Values["DoneCount"])
}

// 无表达式的公式列对每一行都解析为 null
func TestFormulaEmptyExpressionIsNull(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "bob")
	dbID := mustDatabase(t, svc, "Things", uid)

	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Name", Type: model.ColumnText}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Blank", Type: model.ColumnFormula}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Name": "x"}, uid)
	row := mustGet(t, svc, rowID)
	assert.Nil(t, row.Values["Blank"])
}

func TestFormulaArithmeticAndRefs(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "carol")
	dbID := mustDatabase(t, svc, "Invoices", uid)

	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Amount", Type: model.ColumnNumber}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Qty", Type: model.ColumnNumber}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:       "Total",
		Type:       model.ColumnFormula,
		Expression: "{Amount} * {Qty}",
	}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:       "Big",
		Type:       model.ColumnFormula,
		Expression: `IF({Amount} * {Qty} > 100, "yes", "no")`,
	}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Amount": 25, "Qty": 5}, uid)
	row := mustGet(t, svc, rowID)
	assert.Equal(t, float64(125), row.Values["Total"])
	assert.Equal(t, "yes", row.Values["Big"])
}

// 公式引用不存在的列时该单元格呈现错误哨兵，行的其余部分不受影响
func TestFormulaUnknownRefSentinel(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "dave")
	dbID := mustDatabase(t, svc, "Broken", uid)

	mustColumn(t, svc, dbID, &ColumnCreateParams{Name: "Name", Type: model.ColumnText}, uid)
	mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:       "Bad",
		Type:       model.ColumnFormula,
		Expression: "{Missing} + 1",
	}, uid)

	rowID := mustRow(t, svc, dbID, map[string]any{"Name": "still fine"}, uid)
	row := mustGet(t, svc, rowID)
	assert.Equal(t, cellvalue.SentinelError, row.Values["Bad"])
	assert.Equal(t, "still fine", row.Values["Name"])
}

func TestLookupFirstAndListUniqueStrings(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "erin")

	peopleID := mustDatabase(t, svc, "People", uid)
	teamsID := mustDatabase(t, svc, "Teams", uid)

	nameCol := mustColumn(t, svc, peopleID, &ColumnCreateParams{Name: "Name", Type: model.ColumnText}, uid)

	relCol := mustColumn(t, svc, teamsID, &ColumnCreateParams{
		Name:               "Members",
		Type:               model.ColumnRelation,
		RelationTarget:     model.RelationToDatabase,
		RelationDatabaseID: peopleID,
	}, uid)

	mustColumn(t, svc, teamsID, &ColumnCreateParams{
		Name:                   "Lead",
		Type:                   model.ColumnLookup,
		LookupRelationColumnID: relCol.ID,
		LookupTargetField:      "1",
		LookupMultiplicity:     model.LookupFirst,
	}, uid)
	mustColumn(t, svc, teamsID, &ColumnCreateParams{
		Name:                   "Roster",
		Type:                   model.ColumnLookup,
		LookupRelationColumnID: relCol.ID,
		LookupTargetField:      "1",
		LookupMultiplicity:     model.LookupListUniqueStrings,
	}, uid)

	// LookupTargetField 是列 ID 串，指向 People.Name
	_, err := svc.ColumnUpdate(
		mustColumnID(t, svc, teamsID, "Lead"),
		&ColumnUpdatePatch{LookupTargetField: strPtr(formatID(nameCol.ID))},
		uid)
	require.NoError(t, err)
	_, err = svc.ColumnUpdate(
		mustColumnID(t, svc, teamsID, "Roster"),
		&ColumnUpdatePatch{LookupTargetField: strPtr(formatID(nameCol.ID))},
		uid)
	require.NoError(t, err)

	p1 := mustRow(t, svc, peopleID, map[string]any{"Name": "Ann"}, uid)
	p2 := mustRow(t, svc, peopleID, map[string]any{"Name": "Ben"}, uid)
	p3 := mustRow(t, svc, peopleID, map[string]any{"Name": "Ann"}, uid)

	team := mustRow(t, svc, teamsID, map[string]any{"Members": []int64{p1, p2, p3}}, uid)
	row := mustGet(t, svc, team)

	assert.Equal(t, "Ann", row.Values["Lead"])
	assert.Equal(t, "Ann, Ben", row.Values["Roster"])

	// 没有关联时 FIRST 为 null，LIST 为空串
	empty := mustRow(t, svc, teamsID, map[string]any{}, uid)
	row = mustGet(t, svc, empty)
	assert.Nil(t, row.Values["Lead"])
	assert.Equal(t, "", row.Values["Roster"])
}

// 形如哨兵串的普通文本只是数据，不会让 LIST 查找提前收束
func TestLookupMarkerShapedTextIsData(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "erin")

	peopleID := mustDatabase(t, svc, "People", uid)
	teamsID := mustDatabase(t, svc, "Teams", uid)

	nameCol := mustColumn(t, svc, peopleID, &ColumnCreateParams{Name: "Name", Type: model.ColumnText}, uid)

	relCol := mustColumn(t, svc, teamsID, &ColumnCreateParams{
		Name:               "Members",
		Type:               model.ColumnRelation,
		RelationTarget:     model.RelationToDatabase,
		RelationDatabaseID: peopleID,
	}, uid)
	mustColumn(t, svc, teamsID, &ColumnCreateParams{
		Name:                   "Roster",
		Type:                   model.ColumnLookup,
		LookupRelationColumnID: relCol.ID,
		LookupTargetField:      formatID(nameCol.ID),
		LookupMultiplicity:     model.LookupListUniqueStrings,
	}, uid)

	p1 := mustRow(t, svc, peopleID, map[string]any{"Name": "#1!"}, uid)
	p2 := mustRow(t, svc, peopleID, map[string]any{"Name": "Ann"}, uid)

	team := mustRow(t, svc, teamsID, map[string]any{"Members": []int64{p1, p2}}, uid)
	row := mustGet(t, svc, team)

	assert.Equal(t, "#1!, Ann", row.Values["Roster"])
}

// 自指的汇总链路检出环，呈现为哨兵而不是死循环
func TestRollupCycleSentinel(t *testing.T) {
	svc := newTestService(t)
	uid := newTestUser(t, svc, "frank")
	dbID := mustDatabase(t, svc, "Ouroboros", uid)

	relCol := mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:               "Self",
		Type:               model.ColumnRelation,
		RelationTarget:     model.RelationToDatabase,
		RelationDatabaseID: dbID,
	}, uid)

	sum := mustColumn(t, svc, dbID, &ColumnCreateParams{
		Name:                   "Sum",
		Type:                   model.ColumnRollup,
		RollupRelationColumnID: relCol.ID,
		RollupTargetColumnID:   relCol.ID,
		RollupFunc:             rollup.Sum,
	}, uid)

	// 汇总目标指回自身，构成派生环
	_, err := svc.ColumnUpdate(sum.ID, &ColumnUpdatePatch{RollupTargetColumnID: &sum.ID}, uid)
	require.NoError(t, err)

	rowID := mustRow(t, svc, dbID, map[string]any{}, uid)
	require.NoError(t, svc.RowUpdate(rowID, map[string]any{"Self": []int64{rowID}}, uid))

	row := mustGet(t, svc, rowID)
	assert.Equal(t, cellvalue.SentinelCycle, row.Values["Sum"])
}

// 缺行返回 (nil, nil)
func TestRowGetMissing(t *testing.T) {
	svc := newTestService(t)
	row, err := svc.RowGet(424242)
	require.NoError(t, err)
	assert.Nil(t, row)
}
