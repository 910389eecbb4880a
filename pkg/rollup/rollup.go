// Package rollup implements the statistical aggregation functions available
// to rollup columns. The functions are pure: they operate on already
// resolved cell values and know nothing about storage or relations.
//
// Package rollup 实现汇总列的统计聚合函数。
package rollup

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/util"
)

// Func 聚合函数的封闭集合
type Func string

const (
	CountAll          Func = "COUNT_ALL"
	CountValues       Func = "COUNT_VALUES"
	CountUniqueValues Func = "COUNT_UNIQUE_VALUES"
	Sum               Func = "SUM"
	Avg               Func = "AVG"
	Min               Func = "MIN"
	Max               Func = "MAX"
	ShowUnique        Func = "SHOW_UNIQUE"
	PercentEmpty      Func = "PERCENT_EMPTY"
	PercentNotEmpty   Func = "PERCENT_NOT_EMPTY"
	CountChecked      Func = "COUNT_CHECKED"
	CountUnchecked    Func = "COUNT_UNCHECKED"
	PercentChecked    Func = "PERCENT_CHECKED"
	PercentUnchecked  Func = "PERCENT_UNCHECKED"
)

// IsValid 判断聚合函数名是否合法
func (f Func) IsValid() bool {
	switch f {
	case CountAll, CountValues, CountUniqueValues, Sum, Avg, Min, Max,
		ShowUnique, PercentEmpty, PercentNotEmpty,
		CountChecked, CountUnchecked, PercentChecked, PercentUnchecked:
		return true
	}
	return false
}

// TargetKind is the shape of the rollup target column that matters to the
// math: numeric, date (lexicographic ISO strings), boolean, or anything.
// TargetKind 聚合目标列的类型约束。
type TargetKind string

const (
	TargetNumber  TargetKind = "number"
	TargetDate    TargetKind = "date"
	TargetBoolean TargetKind = "boolean"
	TargetAny     TargetKind = "any"
)

// Aggregate applies fn over values. A type mismatch between fn and the
// target column kind is an error, never a silently coerced result.
// Aggregate 对 values 应用聚合函数，类型不匹配时返回错误而非强制转换。
func Aggregate(fn Func, values []cellvalue.Value, target TargetKind) (cellvalue.Value, error) {
	switch fn {
	case CountAll:
		return cellvalue.Number(float64(len(values))), nil

	case CountValues:
		return cellvalue.Number(float64(len(nonEmpty(values)))), nil

	case CountUniqueValues:
		return cellvalue.Number(float64(len(uniqueStrings(nonEmpty(values))))), nil

	case Sum, Avg:
		if target != TargetNumber {
			return cellvalue.Null(), errors.Errorf("rollup: %s requires a NUMBER target column", fn)
		}
		nums, err := toNumbers(nonNull(values))
		if err != nil {
			return cellvalue.Null(), err
		}
		if len(nums) == 0 {
			if fn == Sum {
				return cellvalue.Number(0), nil
			}
			return cellvalue.Null(), nil
		}
		var total float64
		for _, n := range nums {
			total += n
		}
		if fn == Sum {
			return cellvalue.Number(total), nil
		}
		return cellvalue.Number(total / float64(len(nums))), nil

	case Min, Max:
		switch target {
		case TargetNumber:
			nums, err := toNumbers(nonNull(values))
			if err != nil {
				return cellvalue.Null(), err
			}
			if len(nums) == 0 {
				return cellvalue.Null(), nil
			}
			best := nums[0]
			for _, n := range nums[1:] {
				if (fn == Min && n < best) || (fn == Max && n > best) {
					best = n
				}
			}
			return cellvalue.Number(best), nil
		case TargetDate:
			// ISO dates compare correctly as strings
			// ISO 日期按字符串比较即可保持时间顺序
			var dates []string
			for _, v := range nonEmpty(values) {
				dates = append(dates, v.String())
			}
			if len(dates) == 0 {
				return cellvalue.Null(), nil
			}
			best := dates[0]
			for _, d := range dates[1:] {
				if (fn == Min && d < best) || (fn == Max && d > best) {
					best = d
				}
			}
			return cellvalue.Text(best), nil
		default:
			return cellvalue.Null(), errors.Errorf("rollup: %s requires a NUMBER or DATE target column", fn)
		}

	case ShowUnique:
		return cellvalue.Text(strings.Join(uniqueStrings(nonEmpty(values)), ", ")), nil

	case PercentEmpty, PercentNotEmpty:
		if len(values) == 0 {
			return cellvalue.Number(0), nil
		}
		var empty int
		for _, v := range values {
			if v.IsNull() {
				empty++
			}
		}
		if fn == PercentEmpty {
			return cellvalue.Number(float64(empty) / float64(len(values)) * 100), nil
		}
		return cellvalue.Number(float64(len(values)-empty) / float64(len(values)) * 100), nil

	case CountChecked, CountUnchecked, PercentChecked, PercentUnchecked:
		if target != TargetBoolean {
			return cellvalue.Null(), errors.Errorf("rollup: %s requires a BOOLEAN target column", fn)
		}
		var checked, total int
		for _, v := range values {
			if v.Kind() != cellvalue.KindBool {
				continue
			}
			total++
			if v.Bool() {
				checked++
			}
		}
		switch fn {
		case CountChecked:
			return cellvalue.Number(float64(checked)), nil
		case CountUnchecked:
			return cellvalue.Number(float64(total - checked)), nil
		}
		if total == 0 {
			return cellvalue.Number(0), nil
		}
		if fn == PercentChecked {
			return cellvalue.Number(float64(checked) / float64(total) * 100), nil
		}
		return cellvalue.Number(float64(total-checked) / float64(total) * 100), nil
	}

	return cellvalue.Null(), errors.Errorf("rollup: unknown aggregate function %q", fn)
}

// nonNull 过滤掉 null 值
func nonNull(values []cellvalue.Value) []cellvalue.Value {
	out := make([]cellvalue.Value, 0, len(values))
	for _, v := range values {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}

// nonEmpty 过滤掉 null 与空字符串
func nonEmpty(values []cellvalue.Value) []cellvalue.Value {
	out := make([]cellvalue.Value, 0, len(values))
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if v.Kind() == cellvalue.KindText && v.Text() == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// uniqueStrings 字符串化后去重，保持顺序
func uniqueStrings(values []cellvalue.Value) []string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		strs = append(strs, v.String())
	}
	return util.ArrayUnique(strs)
}

// toNumbers coerces resolved values into float64, failing on anything that
// is not numeric rather than producing NaN.
// toNumbers 将值列表转换为 float64，任何非数值都会返回错误。
func toNumbers(values []cellvalue.Value) ([]float64, error) {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, err := cast.ToFloat64E(v.Interface())
		if err != nil {
			return nil, errors.Wrapf(err, "rollup: value %q is not numeric", v.String())
		}
		out = append(out, f)
	}
	return out, nil
}
