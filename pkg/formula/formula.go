// Package formula evaluates column expressions over a row's already
// resolved values. Evaluation never panics: every parse or type problem
// comes back as an error for the caller to turn into a sentinel cell.
//
// Package formula 对行内已解析的值求值列表达式，任何错误均以返回值形式上抛。
package formula

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

// Evaluate runs expression against env. Column references resolve by name
// or by id string; both keys point at the same resolved value. An empty
// expression resolves to null for every row.
// Evaluate 对表达式求值，env 以列名与列 ID 两种键提供同一个已解析值。
func Evaluate(expression string, env map[string]cellvalue.Value) (cellvalue.Value, error) {
	if strings.TrimSpace(expression) == "" {
		return cellvalue.Null(), nil
	}
	root, err := parse(expression)
	if err != nil {
		return cellvalue.Null(), err
	}
	return eval(root, env)
}

func eval(n node, env map[string]cellvalue.Value) (cellvalue.Value, error) {
	switch t := n.(type) {
	case numberNode:
		return cellvalue.Number(t.value), nil
	case stringNode:
		return cellvalue.Text(t.value), nil
	case boolNode:
		return cellvalue.Bool(t.value), nil

	case refNode:
		if t.name == "" {
			return cellvalue.Null(), nil
		}
		v, ok := env[t.name]
		if !ok {
			return cellvalue.Null(), errors.Errorf("formula: unknown column %q", t.name)
		}
		return v, nil

	case unaryNode:
		child, err := eval(t.child, env)
		if err != nil {
			return cellvalue.Null(), err
		}
		switch t.op {
		case "-":
			f, err := toNumber(child)
			if err != nil {
				return cellvalue.Null(), err
			}
			return cellvalue.Number(-f), nil
		case "!":
			return cellvalue.Bool(!truthy(child)), nil
		}
		return cellvalue.Null(), errors.Errorf("formula: unknown unary operator %q", t.op)

	case binaryNode:
		return evalBinary(t, env)

	case callNode:
		return evalCall(t, env)
	}
	return cellvalue.Null(), errors.New("formula: malformed expression tree")
}

func evalBinary(n binaryNode, env map[string]cellvalue.Value) (cellvalue.Value, error) {
	// 逻辑运算符短路求值
	if n.op == "&&" || n.op == "||" {
		left, err := eval(n.left, env)
		if err != nil {
			return cellvalue.Null(), err
		}
		if n.op == "&&" && !truthy(left) {
			return cellvalue.Bool(false), nil
		}
		if n.op == "||" && truthy(left) {
			return cellvalue.Bool(true), nil
		}
		right, err := eval(n.right, env)
		if err != nil {
			return cellvalue.Null(), err
		}
		return cellvalue.Bool(truthy(right)), nil
	}

	left, err := eval(n.left, env)
	if err != nil {
		return cellvalue.Null(), err
	}
	right, err := eval(n.right, env)
	if err != nil {
		return cellvalue.Null(), err
	}

	switch n.op {
	case "+", "-", "*", "/", "%":
		lf, err := toNumber(left)
		if err != nil {
			return cellvalue.Null(), err
		}
		rf, err := toNumber(right)
		if err != nil {
			return cellvalue.Null(), err
		}
		switch n.op {
		case "+":
			return cellvalue.Number(lf + rf), nil
		case "-":
			return cellvalue.Number(lf - rf), nil
		case "*":
			return cellvalue.Number(lf * rf), nil
		case "/":
			if rf == 0 {
				return cellvalue.Null(), errors.New("formula: division by zero")
			}
			return cellvalue.Number(lf / rf), nil
		case "%":
			if rf == 0 {
				return cellvalue.Null(), errors.New("formula: division by zero")
			}
			return cellvalue.Number(math.Mod(lf, rf)), nil
		}

	case "==", "!=", "<", "<=", ">", ">=":
		cmp, err := compare(left, right)
		if err != nil {
			return cellvalue.Null(), err
		}
		switch n.op {
		case "==":
			return cellvalue.Bool(cmp == 0), nil
		case "!=":
			return cellvalue.Bool(cmp != 0), nil
		case "<":
			return cellvalue.Bool(cmp < 0), nil
		case "<=":
			return cellvalue.Bool(cmp <= 0), nil
		case ">":
			return cellvalue.Bool(cmp > 0), nil
		case ">=":
			return cellvalue.Bool(cmp >= 0), nil
		}
	}
	return cellvalue.Null(), errors.Errorf("formula: unknown operator %q", n.op)
}

func evalCall(n callNode, env map[string]cellvalue.Value) (cellvalue.Value, error) {
	// IF 需要懒求值，单独处理
	if n.name == "IF" {
		if len(n.args) != 3 {
			return cellvalue.Null(), errors.New("formula: IF takes exactly 3 arguments")
		}
		cond, err := eval(n.args[0], env)
		if err != nil {
			return cellvalue.Null(), err
		}
		if truthy(cond) {
			return eval(n.args[1], env)
		}
		return eval(n.args[2], env)
	}

	args := make([]cellvalue.Value, 0, len(n.args))
	for _, a := range n.args {
		v, err := eval(a, env)
		if err != nil {
			return cellvalue.Null(), err
		}
		args = append(args, v)
	}

	switch n.name {
	case "CONCAT":
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(a.String())
		}
		return cellvalue.Text(sb.String()), nil

	case "LEN":
		if len(args) != 1 {
			return cellvalue.Null(), errors.New("formula: LEN takes exactly 1 argument")
		}
		return cellvalue.Number(float64(len([]rune(args[0].String())))), nil

	case "UPPER", "LOWER", "TRIM":
		if len(args) != 1 {
			return cellvalue.Null(), errors.Errorf("formula: %s takes exactly 1 argument", n.name)
		}
		s := args[0].String()
		switch n.name {
		case "UPPER":
			return cellvalue.Text(strings.ToUpper(s)), nil
		case "LOWER":
			return cellvalue.Text(strings.ToLower(s)), nil
		}
		return cellvalue.Text(strings.TrimSpace(s)), nil

	case "ABS":
		if len(args) != 1 {
			return cellvalue.Null(), errors.New("formula: ABS takes exactly 1 argument")
		}
		f, err := toNumber(args[0])
		if err != nil {
			return cellvalue.Null(), err
		}
		return cellvalue.Number(math.Abs(f)), nil

	case "ROUND":
		if len(args) < 1 || len(args) > 2 {
			return cellvalue.Null(), errors.New("formula: ROUND takes 1 or 2 arguments")
		}
		f, err := toNumber(args[0])
		if err != nil {
			return cellvalue.Null(), err
		}
		digits := 0.0
		if len(args) == 2 {
			if digits, err = toNumber(args[1]); err != nil {
				return cellvalue.Null(), err
			}
		}
		scale := math.Pow(10, digits)
		return cellvalue.Number(math.Round(f*scale) / scale), nil

	case "MIN", "MAX":
		if len(args) == 0 {
			return cellvalue.Null(), errors.Errorf("formula: %s needs at least 1 argument", n.name)
		}
		best, err := toNumber(args[0])
		if err != nil {
			return cellvalue.Null(), err
		}
		for _, a := range args[1:] {
			f, err := toNumber(a)
			if err != nil {
				return cellvalue.Null(), err
			}
			if (n.name == "MIN" && f < best) || (n.name == "MAX" && f > best) {
				best = f
			}
		}
		return cellvalue.Number(best), nil

	case "AND", "OR":
		result := n.name == "AND"
		for _, a := range args {
			if n.name == "AND" {
				result = result && truthy(a)
			} else {
				result = result || truthy(a)
			}
		}
		return cellvalue.Bool(result), nil

	case "NOT":
		if len(args) != 1 {
			return cellvalue.Null(), errors.New("formula: NOT takes exactly 1 argument")
		}
		return cellvalue.Bool(!truthy(args[0])), nil

	case "EMPTY":
		if len(args) != 1 {
			return cellvalue.Null(), errors.New("formula: EMPTY takes exactly 1 argument")
		}
		return cellvalue.Bool(args[0].IsEmpty()), nil
	}

	return cellvalue.Null(), errors.Errorf("formula: unknown function %q", n.name)
}

// toNumber 将值强制转换为数值，失败返回错误
func toNumber(v cellvalue.Value) (float64, error) {
	if v.IsNull() {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v.Interface())
	if err != nil {
		return 0, errors.Errorf("formula: %q is not a number", v.String())
	}
	return f, nil
}

// truthy 判断值的布尔语义：非空、非零、非 false
func truthy(v cellvalue.Value) bool {
	switch v.Kind() {
	case cellvalue.KindBool:
		return v.Bool()
	case cellvalue.KindNumber:
		return v.Number() != 0
	case cellvalue.KindNull:
		return false
	}
	return !v.IsEmpty()
}

// compare 比较两个值：双方均可转数值时按数值比较，否则按字符串比较
func compare(a, b cellvalue.Value) (int, error) {
	af, aerr := cast.ToFloat64E(a.Interface())
	bf, berr := cast.ToFloat64E(b.Interface())
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		}
		return 0, nil
	}
	return strings.Compare(a.String(), b.String()), nil
}
