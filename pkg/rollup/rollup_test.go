package rollup

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

func nums(fs ...float64) []cellvalue.Value {
	out := make([]cellvalue.Value, 0, len(fs))
	for _, f := range fs {
		out = append(out, cellvalue.Number(f))
	}
	return out
}

func TestAggregateEmptyInputs(t *testing.T) {
	// SUM 空集合为 0
	v, err := Aggregate(Sum, nil, TargetNumber)
	require.NoError(t, err)
	assert.Equal(t, float64(0), v.Number())

	// AVG 与 MIN/MAX 空集合为 null
	v, err = Aggregate(Avg, nil, TargetNumber)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = Aggregate(Min, nil, TargetNumber)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = Aggregate(Max, nil, TargetDate)
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

// 类型不匹配返回错误，绝不强转出数值
func TestAggregateTypeMismatch(t *testing.T) {
	_, err := Aggregate(Sum, []cellvalue.Value{cellvalue.Text("a")}, TargetAny)
	assert.Error(t, err)

	_, err = Aggregate(Avg, nums(1), TargetDate)
	assert.Error(t, err)

	_, err = Aggregate(CountChecked, nil, TargetNumber)
	assert.Error(t, err)

	_, err = Aggregate(Min, nil, TargetBoolean)
	assert.Error(t, err)

	// 目标列对但值不是数值同样报错
	_, err = Aggregate(Sum, []cellvalue.Value{cellvalue.Text("abc")}, TargetNumber)
	assert.Error(t, err)
}

func TestAggregateCounts(t *testing.T) {
	values := []cellvalue.Value{
		cellvalue.Text("a"),
		cellvalue.Null(),
		cellvalue.Text(""),
		cellvalue.Text("a"),
		cellvalue.Text("b"),
	}

	v, err := Aggregate(CountAll, values, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, float64(5), v.Number())

	v, err = Aggregate(CountValues, values, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v.Number())

	v, err = Aggregate(CountUniqueValues, values, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v.Number())

	v, err = Aggregate(ShowUnique, values, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, "a, b", v.Text())
}

func TestAggregatePercentEmpty(t *testing.T) {
	values := []cellvalue.Value{cellvalue.Text("x"), cellvalue.Null(), cellvalue.Null(), cellvalue.Text("y")}

	v, err := Aggregate(PercentEmpty, values, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, float64(50), v.Number())

	v, err = Aggregate(PercentNotEmpty, values, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, float64(50), v.Number())

	// 空集合的比例为 0
	v, err = Aggregate(PercentEmpty, nil, TargetAny)
	require.NoError(t, err)
	assert.Equal(t, float64(0), v.Number())
}

func TestAggregateChecked(t *testing.T) {
	values := []cellvalue.Value{
		cellvalue.Bool(true),
		cellvalue.Bool(false),
		cellvalue.Bool(true),
		cellvalue.Null(), // 非布尔值不计入
	}

	v, err := Aggregate(CountChecked, values, TargetBoolean)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v.Number())

	v, err = Aggregate(CountUnchecked, values, TargetBoolean)
	require.NoError(t, err)
	assert.Equal(t, float64(1), v.Number())

	v, err = Aggregate(PercentChecked, values, TargetBoolean)
	require.NoError(t, err)
	assert.InDelta(t, 66.67, v.Number(), 0.01)

	v, err = Aggregate(PercentUnchecked, nil, TargetBoolean)
	require.NoError(t, err)
	assert.Equal(t, float64(0), v.Number())
}

func TestAggregateDates(t *testing.T) {
	dates := []cellvalue.Value{
		cellvalue.Text("2024-03-01"),
		cellvalue.Text("2023-12-31"),
		cellvalue.Text("2024-01-15"),
	}

	v, err := Aggregate(Min, dates, TargetDate)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", v.Text())

	v, err = Aggregate(Max, dates, TargetDate)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", v.Text())
}

// 数值聚合的代数性质
func TestAggregateNumericProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sum equals avg times count", prop.ForAll(
		func(fs []float64) bool {
			values := nums(fs...)
			sum, err := Aggregate(Sum, values, TargetNumber)
			if err != nil {
				return false
			}
			if len(fs) == 0 {
				return sum.Number() == 0
			}
			avg, err := Aggregate(Avg, values, TargetNumber)
			if err != nil {
				return false
			}
			diff := sum.Number() - avg.Number()*float64(len(fs))
			return diff < 1e-6 && diff > -1e-6
		},
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.Property("min is never greater than max", prop.ForAll(
		func(fs []float64) bool {
			if len(fs) == 0 {
				return true
			}
			values := nums(fs...)
			min, err := Aggregate(Min, values, TargetNumber)
			if err != nil {
				return false
			}
			max, err := Aggregate(Max, values, TargetNumber)
			if err != nil {
				return false
			}
			return min.Number() <= max.Number()
		},
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.TestingRun(t)
}
