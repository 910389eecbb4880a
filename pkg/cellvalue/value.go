// Package cellvalue implements the typed cell value variant used by the
// table engine. A cell is physically one of text/number/bool, plus the two
// list shapes used by multi-select columns and relation id lists. Values
// cross the storage boundary through Encode/Decode, never as opaque strings
// interpreted by callers.
//
// Package cellvalue 实现表格引擎的单元格值变体类型。
package cellvalue

import (
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// Kind 单元格值的类型标签
type Kind string

const (
	KindNull       Kind = "null"
	KindText       Kind = "text"
	KindNumber     Kind = "number"
	KindBool       Kind = "bool"
	KindStringList Kind = "stringList"
	KindRowRefList Kind = "rowRefList"
)

// Sentinel cell contents used by the read path when a derived column cannot
// be resolved. One bad column degrades to a marker value instead of failing
// the whole row.
// 读路径在派生列无法解析时写入的哨兵值。
const (
	SentinelConfigError = "#CONFIG_ERROR!"
	SentinelCycle       = "#CYCLE!"
	SentinelError       = "#ERROR!"
)

// Value is an immutable tagged variant.
// Value 是不可变的带标签变体值。
type Value struct {
	kind    Kind
	text    string
	number  float64
	boolean bool
	strs    []string
	refs    []int64
}

func Null() Value {
	return Value{kind: KindNull}
}

func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func Number(f float64) Value {
	return Value{kind: KindNumber, number: f}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func StringList(s []string) Value {
	return Value{kind: KindStringList, strs: s}
}

func RowRefList(ids []int64) Value {
	return Value{kind: KindRowRefList, refs: ids}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsEmpty reports whether the value counts as "no content" for validation
// and rollup filtering: null, empty string, or an empty list.
// IsEmpty 判断值在校验与聚合过滤语义下是否为空。
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindText:
		return v.text == ""
	case KindStringList:
		return len(v.strs) == 0
	case KindRowRefList:
		return len(v.refs) == 0
	}
	return false
}

// IsSentinel reports whether the value is one of the resolver error markers.
// Exact comparison only: stored text that merely looks marker shaped, such
// as "#1!", is ordinary data.
func (v Value) IsSentinel() bool {
	if v.kind != KindText {
		return false
	}
	switch v.text {
	case SentinelConfigError, SentinelCycle, SentinelError:
		return true
	}
	return false
}

func (v Value) Text() string {
	return v.text
}

func (v Value) Number() float64 {
	return v.number
}

func (v Value) Bool() bool {
	return v.boolean
}

func (v Value) Strings() []string {
	return v.strs
}

func (v Value) RowRefs() []int64 {
	return v.refs
}

// Interface returns the value as a plain Go value for host consumption.
// Interface 返回宿主可直接消费的原生 Go 值。
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.number
	case KindBool:
		return v.boolean
	case KindStringList:
		return v.strs
	case KindRowRefList:
		return v.refs
	}
	return nil
}

// String renders the value the way rollup/lookup stringification expects:
// numbers without trailing zeros, lists joined with ", ".
// String 按聚合/投影的字符串化规则渲染值。
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindStringList:
		return strings.Join(v.strs, ", ")
	case KindRowRefList:
		parts := make([]string, 0, len(v.refs))
		for _, id := range v.refs {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// envelope 存储编码用的 JSON 信封
type envelope struct {
	Kind  Kind `json:"kind"`
	Value any  `json:"value,omitempty"`
}

// Encode serializes the value for storage in a single text column.
// Encode 将值序列化为可存储的 JSON 文本。
func (v Value) Encode() (string, error) {
	b, err := sonic.Marshal(envelope{Kind: v.kind, Value: v.Interface()})
	if err != nil {
		return "", errors.Wrap(err, "cellvalue: encode")
	}
	return string(b), nil
}

// Decode is the inverse of Encode and validates the tag at the boundary.
// Decode 为 Encode 的逆操作，在存储边界校验标签合法性。
func Decode(data string) (Value, error) {
	var env envelope
	if err := sonic.Unmarshal([]byte(data), &env); err != nil {
		return Null(), errors.Wrap(err, "cellvalue: decode")
	}
	switch env.Kind {
	case KindNull:
		return Null(), nil
	case KindText:
		s, ok := env.Value.(string)
		if !ok {
			return Null(), errors.Errorf("cellvalue: text payload is %T", env.Value)
		}
		return Text(s), nil
	case KindNumber:
		f, ok := env.Value.(float64)
		if !ok {
			return Null(), errors.Errorf("cellvalue: number payload is %T", env.Value)
		}
		return Number(f), nil
	case KindBool:
		b, ok := env.Value.(bool)
		if !ok {
			return Null(), errors.Errorf("cellvalue: bool payload is %T", env.Value)
		}
		return Bool(b), nil
	case KindStringList:
		raw, ok := env.Value.([]any)
		if !ok {
			if env.Value == nil {
				return StringList(nil), nil
			}
			return Null(), errors.Errorf("cellvalue: string list payload is %T", env.Value)
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				return Null(), errors.Errorf("cellvalue: string list item is %T", item)
			}
			out = append(out, s)
		}
		return StringList(out), nil
	case KindRowRefList:
		raw, ok := env.Value.([]any)
		if !ok {
			if env.Value == nil {
				return RowRefList(nil), nil
			}
			return Null(), errors.Errorf("cellvalue: row ref payload is %T", env.Value)
		}
		out := make([]int64, 0, len(raw))
		for _, item := range raw {
			f, ok := item.(float64)
			if !ok {
				return Null(), errors.Errorf("cellvalue: row ref item is %T", item)
			}
			out = append(out, int64(f))
		}
		return RowRefList(out), nil
	}
	return Null(), errors.Errorf("cellvalue: unknown kind %q", env.Kind)
}

// FromAny converts a loosely typed host value (JSON-shaped input) into a
// tagged Value. Integers arrive as several Go types depending on the caller.
// FromAny 将宿主传入的松散类型值转换为带标签的 Value。
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val, nil
	case string:
		return Text(val), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case float32:
		return Number(float64(val)), nil
	case int:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case []string:
		return StringList(val), nil
	case []int64:
		return RowRefList(val), nil
	case []any:
		strs := make([]string, 0, len(val))
		refs := make([]int64, 0, len(val))
		allStr, allNum := true, true
		for _, item := range val {
			if s, ok := item.(string); ok {
				strs = append(strs, s)
			} else {
				allStr = false
			}
			if f, ok := item.(float64); ok {
				refs = append(refs, int64(f))
			} else if n, ok := item.(int64); ok {
				refs = append(refs, n)
			} else if n, ok := item.(int); ok {
				refs = append(refs, int64(n))
			} else {
				allNum = false
			}
		}
		if allStr {
			return StringList(strs), nil
		}
		if allNum {
			return RowRefList(refs), nil
		}
		return Null(), errors.New("cellvalue: mixed list values are not supported")
	}
	return Null(), errors.Errorf("cellvalue: unsupported value type %T", v)
}
