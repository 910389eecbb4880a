package service

import (
	"fmt"
	"regexp"
	"strings"

	validatorx "github.com/go-playground/validator/v10"

	"github.com/papyrus-notes/table-engine/internal/dao"
	"github.com/papyrus-notes/table-engine/internal/model"
	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
)

// 共享的字段级校验器，is_email 规则使用
var fieldValidator = validatorx.New()

// Validate applies the column's rules to a candidate value and returns every
// applicable message. It never fails: broken rule configuration degrades to
// a fixed message, unknown rule types are skipped.
//
// The unique rule needs a store handle to see sibling rows. With store nil
// the rule is a documented no-op: schema-only validation (e.g. previewing a
// value client-side) simply cannot check uniqueness.
//
// Validate 对候选值应用列上的全部规则并累积所有适用的消息，永不抛错。
// unique 规则依赖 store 句柄，store 为 nil 时该规则不生效（文档化行为）。
func Validate(value cellvalue.Value, rules []model.ValidationRule, col *model.Column, currentRowID int64, store *dao.Dao) []string {
	var msgs []string

	for _, rule := range rules {
		switch rule.Type {

		case model.RuleNotEmpty:
			if value.IsEmpty() {
				msgs = append(msgs, message(rule, fmt.Sprintf("%s must not be empty", col.Name)))
			}

		case model.RuleIsEmail:
			// 空值跳过，需要必填请叠加 not_empty
			if value.IsEmpty() {
				continue
			}
			if err := fieldValidator.Var(value.String(), "email"); err != nil {
				msgs = append(msgs, message(rule, fmt.Sprintf("%s must be a valid email address", col.Name)))
			}

		case model.RuleMinLength, model.RuleMaxLength:
			// 仅对字符串生效
			if value.Kind() != cellvalue.KindText {
				continue
			}
			length := len([]rune(value.Text()))
			if rule.Type == model.RuleMinLength && length < int(rule.Value) {
				msgs = append(msgs, message(rule, fmt.Sprintf("%s must be at least %d characters", col.Name, int(rule.Value))))
			}
			if rule.Type == model.RuleMaxLength && length > int(rule.Value) {
				msgs = append(msgs, message(rule, fmt.Sprintf("%s must be at most %d characters", col.Name, int(rule.Value))))
			}

		case model.RuleMinValue, model.RuleMaxValue:
			if m := validateBound(value, rule, col); m != "" {
				msgs = append(msgs, m)
			}

		case model.RuleRegex:
			if value.IsEmpty() {
				continue
			}
			pattern := rule.Pattern
			if strings.Contains(rule.Flags, "i") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				// 规则配置坏了不是数据的错，也绝不向上抛
				msgs = append(msgs, fmt.Sprintf("%s has an invalid pattern configured", col.Name))
				continue
			}
			if !re.MatchString(value.String()) {
				msgs = append(msgs, message(rule, fmt.Sprintf("%s does not match the required pattern", col.Name)))
			}

		case model.RuleUnique:
			if store == nil || value.IsEmpty() {
				continue
			}
			taken, err := uniqueTaken(store, col.ID, currentRowID, value)
			if err != nil {
				msgs = append(msgs, fmt.Sprintf("%s uniqueness could not be verified", col.Name))
				continue
			}
			if taken {
				msgs = append(msgs, message(rule, fmt.Sprintf("%s must be unique", col.Name)))
			}

		default:
			// 未识别的规则类型忽略
		}
	}

	return msgs
}

// validateBound 数值列按数值比较，日期列按 ISO 字符串字典序比较
func validateBound(value cellvalue.Value, rule model.ValidationRule, col *model.Column) string {
	switch col.Type {
	case model.ColumnNumber:
		if value.Kind() != cellvalue.KindNumber {
			return ""
		}
		if rule.Type == model.RuleMinValue && value.Number() < rule.Value {
			return message(rule, fmt.Sprintf("%s must be at least %v", col.Name, rule.Value))
		}
		if rule.Type == model.RuleMaxValue && value.Number() > rule.Value {
			return message(rule, fmt.Sprintf("%s must be at most %v", col.Name, rule.Value))
		}
	case model.ColumnDate, model.ColumnDateTime:
		if value.Kind() != cellvalue.KindText || value.Text() == "" || rule.Text == "" {
			return ""
		}
		if rule.Type == model.RuleMinValue && value.Text() < rule.Text {
			return message(rule, fmt.Sprintf("%s must not be before %s", col.Name, rule.Text))
		}
		if rule.Type == model.RuleMaxValue && value.Text() > rule.Text {
			return message(rule, fmt.Sprintf("%s must not be after %s", col.Name, rule.Text))
		}
	}
	return ""
}

// uniqueTaken 查询该列是否已有其它行持有同一个值
func uniqueTaken(store *dao.Dao, columnID, currentRowID int64, value cellvalue.Value) (bool, error) {
	cells, err := store.CellsByColumn(columnID)
	if err != nil {
		return false, err
	}
	want := value.String()
	for _, cell := range cells {
		if cell.RowID == currentRowID {
			// 行更新为自身当前值不算冲突
			continue
		}
		existing, err := cell.Value()
		if err != nil {
			continue
		}
		if !existing.IsEmpty() && existing.String() == want {
			return true, nil
		}
	}
	return false, nil
}

// message 优先使用规则配置的自定义消息
func message(rule model.ValidationRule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}
