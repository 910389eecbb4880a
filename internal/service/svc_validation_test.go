package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

func textCol(name string) *model.Column {
	return &model.Column{Name: name, Type: model.ColumnText}
}

func TestValidateNotEmpty(t *testing.T) {
	rules := []model.ValidationRule{{Type: model.RuleNotEmpty}}
	col := textCol("Name")

	assert.Len(t, Validate(cellvalue.Null(), rules, col, 0, nil), 1)
	assert.Len(t, Validate(cellvalue.Text(""), rules, col, 0, nil), 1)
	assert.Empty(t, Validate(cellvalue.Text("x"), rules, col, 0, nil))

	// MULTI_SELECT 的空列表同样算空
	msCol := &model.Column{Name: "Tags", Type: model.ColumnMultiSelect}
	assert.Len(t, Validate(cellvalue.StringList(nil), rules, msCol, 0, nil), 1)
	assert.Empty(t, Validate(cellvalue.StringList([]string{"a"}), rules, msCol, 0, nil))
}

func TestValidateIsEmail(t *testing.T) {
	rules := []model.ValidationRule{{Type: model.RuleIsEmail}}
	col := textCol("Email")

	assert.Empty(t, Validate(cellvalue.Text("a@b.co"), rules, col, 0, nil))
	assert.Len(t, Validate(cellvalue.Text("not-an-email"), rules, col, 0, nil), 1)
	// 空值跳过，必填需叠加 not_empty
	assert.Empty(t, Validate(cellvalue.Text(""), rules, col, 0, nil))
}

func TestValidateLengthBounds(t *testing.T) {
	rules := []model.ValidationRule{
		{Type: model.RuleMinLength, Value: 2},
		{Type: model.RuleMaxLength, Value: 4},
	}
	col := textCol("Code")

	assert.Len(t, Validate(cellvalue.Text("a"), rules, col, 0, nil), 1)
	assert.Empty(t, Validate(cellvalue.Text("abc"), rules, col, 0, nil))
	assert.Len(t, Validate(cellvalue.Text("abcde"), rules, col, 0, nil), 1)
	// 长度按符文计
	assert.Empty(t, Validate(cellvalue.Text("你好吗"), rules, col, 0, nil))
	// 非字符串忽略
	assert.Empty(t, Validate(cellvalue.Number(1), rules, col, 0, nil))
}

func TestValidateValueBounds(t *testing.T) {
	numCol := &model.Column{Name: "Age", Type: model.ColumnNumber}
	rules := []model.ValidationRule{
		{Type: model.RuleMinValue, Value: 0},
		{Type: model.RuleMaxValue, Value: 150},
	}

	assert.Empty(t, Validate(cellvalue.Number(42), rules, numCol, 0, nil))
	assert.Len(t, Validate(cellvalue.Number(-1), rules, numCol, 0, nil), 1)
	assert.Len(t, Validate(cellvalue.Number(151), rules, numCol, 0, nil), 1)

	// 日期列按 ISO 字符串字典序比较
	dateCol := &model.Column{Name: "Due", Type: model.ColumnDate}
	dateRules := []model.ValidationRule{
		{Type: model.RuleMinValue, Text: "2024-01-01"},
		{Type: model.RuleMaxValue, Text: "2024-12-31"},
	}
	assert.Empty(t, Validate(cellvalue.Text("2024-06-15"), dateRules, dateCol, 0, nil))
	assert.Len(t, Validate(cellvalue.Text("2023-12-31"), dateRules, dateCol, 0, nil), 1)
	assert.Len(t, Validate(cellvalue.Text("2025-01-01"), dateRules, dateCol, 0, nil), 1)
}

func TestValidateRegex(t *testing.T) {
	col := textCol("Slug")

	rules := []model.ValidationRule{{Type: model.RuleRegex, Pattern: "^[a-z-]+$"}}
	assert.Empty(t, Validate(cellvalue.Text("my-slug"), rules, col, 0, nil))
	assert.Len(t, Validate(cellvalue.Text("My Slug"), rules, col, 0, nil), 1)

	// i 标记使匹配大小写不敏感
	ci := []model.ValidationRule{{Type: model.RuleRegex, Pattern: "^[a-z]+$", Flags: "i"}}
	assert.Empty(t, Validate(cellvalue.Text("ABC"), ci, col, 0, nil))

	// 坏模式给出固定消息而不是抛错
	bad := []model.ValidationRule{{Type: model.RuleRegex, Pattern: "([unclosed"}}
	msgs := Validate(cellvalue.Text("anything"), bad, col, 0, nil)
	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "invalid pattern configured")
}

func TestValidateUnknownRuleIgnored(t *testing.T) {
	rules := []model.ValidationRule{{Type: model.RuleType("future_rule")}}
	assert.Empty(t, Validate(cellvalue.Text("x"), rules, textCol("F"), 0, nil))
}

func TestValidateCustomMessageAndAccumulation(t *testing.T) {
	rules := []model.ValidationRule{
		{Type: model.RuleNotEmpty, Message: "name it"},
		{Type: model.RuleMinLength, Value: 3},
	}
	msgs := Validate(cellvalue.Text(""), rules, textCol("Name"), 0, nil)
	// 两条规则都适用，两条消息都累积
	assert.Len(t, msgs, 2)
	assert.Equal(t, "name it", msgs[0])
}

// store 为 nil 时 unique 规则是文档化的 no-op
func TestValidateUniqueWithoutStore(t *testing.T) {
	rules := []model.ValidationRule{{Type: model.RuleUnique}}
	assert.Empty(t, Validate(cellvalue.Text("dup"), rules, textCol("Slug"), 0, nil))
}
