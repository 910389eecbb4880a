package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

func evalOK(t *testing.T, expr string, env map[string]cellvalue.Value) cellvalue.Value {
	t.Helper()
	v, err := Evaluate(expr, env)
	require.NoError(t, err, "expr: %s", expr)
	return v
}

func TestEvaluateEmptyExpression(t *testing.T) {
	v, err := Evaluate("", nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = Evaluate("   ", nil)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestEvaluateArithmetic(t *testing.T) {
	env := map[string]cellvalue.Value{
		"Price": cellvalue.Number(4),
		"Qty":   cellvalue.Number(3),
	}

	assert.Equal(t, float64(12), evalOK(t, "{Price} * {Qty}", env).Number())
	assert.Equal(t, float64(7), evalOK(t, "{Price} + {Qty}", env).Number())
	assert.Equal(t, float64(1), evalOK(t, "{Price} - {Qty}", env).Number())
	assert.Equal(t, float64(-4), evalOK(t, "-{Price}", env).Number())
	assert.Equal(t, float64(1), evalOK(t, "{Price} % {Qty}", env).Number())
	assert.Equal(t, float64(14), evalOK(t, "2 + {Price} * {Qty}", env).Number())
	assert.Equal(t, float64(21), evalOK(t, "(2 + {Price}) * 3.5", env).Number())
}

func TestEvaluateDivisionByZero(t *testing.T) {
	_, err := Evaluate("1 / 0", nil)
	assert.Error(t, err)
}

func TestEvaluateUnknownColumn(t *testing.T) {
	_, err := Evaluate("{Missing} + 1", map[string]cellvalue.Value{})
	assert.Error(t, err)
}

func TestEvaluateComparisonAndLogic(t *testing.T) {
	env := map[string]cellvalue.Value{
		"A": cellvalue.Number(5),
		"B": cellvalue.Text("abc"),
	}

	assert.True(t, evalOK(t, "{A} > 3", env).Bool())
	assert.True(t, evalOK(t, "{A} >= 5", env).Bool())
	assert.False(t, evalOK(t, "{A} < 5", env).Bool())
	assert.True(t, evalOK(t, `{B} == "abc"`, env).Bool())
	// 单等号规约为相等比较
	assert.True(t, evalOK(t, `{B} = "abc"`, env).Bool())
	assert.True(t, evalOK(t, `{A} > 3 && {B} != "xyz"`, env).Bool())
	assert.True(t, evalOK(t, "{A} > 100 || true", env).Bool())
	assert.False(t, evalOK(t, "!({A} > 3)", env).Bool())
}

func TestEvaluateShortCircuit(t *testing.T) {
	// 右侧引用不存在的列，但左侧已定值，不应求值右侧
	v := evalOK(t, "false && {Missing}", map[string]cellvalue.Value{})
	assert.False(t, v.Bool())

	v = evalOK(t, "true || {Missing}", map[string]cellvalue.Value{})
	assert.True(t, v.Bool())
}

func TestEvaluateFunctions(t *testing.T) {
	env := map[string]cellvalue.Value{
		"Name":  cellvalue.Text("  Ada  "),
		"Score": cellvalue.Number(87.456),
		"None":  cellvalue.Null(),
	}

	assert.Equal(t, "yes", evalOK(t, `IF({Score} > 60, "yes", "no")`, env).Text())
	assert.Equal(t, "Ada Lovelace", evalOK(t, `CONCAT(TRIM({Name}), " ", "Lovelace")`, env).Text())
	assert.Equal(t, float64(7), evalOK(t, "LEN({Name})", env).Number())
	assert.Equal(t, "  ADA  ", evalOK(t, "UPPER({Name})", env).Text())
	assert.Equal(t, "  ada  ", evalOK(t, "LOWER({Name})", env).Text())
	assert.Equal(t, float64(5), evalOK(t, "ABS(-5)", env).Number())
	assert.Equal(t, float64(87), evalOK(t, "ROUND({Score})", env).Number())
	assert.Equal(t, 87.46, evalOK(t, "ROUND({Score}, 2)", env).Number())
	assert.Equal(t, float64(1), evalOK(t, "MIN(3, 1, 2)", env).Number())
	assert.Equal(t, float64(3), evalOK(t, "MAX(3, 1, 2)", env).Number())
	assert.True(t, evalOK(t, "AND(true, 1, \"x\")", env).Bool())
	assert.True(t, evalOK(t, "OR(false, 1)", env).Bool())
	assert.False(t, evalOK(t, "NOT(true)", env).Bool())
	assert.True(t, evalOK(t, "EMPTY({None})", env).Bool())
	assert.False(t, evalOK(t, "EMPTY({Name})", env).Bool())
	// 函数名大小写不敏感
	assert.Equal(t, float64(5), evalOK(t, "abs(-5)", env).Number())
}

func TestEvaluateParseErrors(t *testing.T) {
	for _, expr := range []string{
		"1 +",
		"(1 + 2",
		"IF(1, 2)",
		"NOPE(1)",
		`"unterminated`,
	} {
		_, err := Evaluate(expr, nil)
		assert.Error(t, err, "expr: %s", expr)
	}
}
