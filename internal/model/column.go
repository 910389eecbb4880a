package model

import (
	"github.com/bytedance/sonic"

	"github.com/papyrus-notes/table-engine/pkg/cellvalue"
	"github.com/papyrus-notes/table-engine/pkg/rollup"
	"github.com/papyrus-notes/table-engine/pkg/timex"
)

// ColumnType 列类型的封闭集合
type ColumnType string

const (
	ColumnText        ColumnType = "TEXT"
	ColumnNumber      ColumnType = "NUMBER"
	ColumnDate        ColumnType = "DATE"
	ColumnDateTime    ColumnType = "DATETIME"
	ColumnBoolean     ColumnType = "BOOLEAN"
	ColumnSelect      ColumnType = "SELECT"
	ColumnMultiSelect ColumnType = "MULTI_SELECT"
	ColumnRelation    ColumnType = "RELATION"
	ColumnFormula     ColumnType = "FORMULA"
	ColumnRollup      ColumnType = "ROLLUP"
	ColumnLookup      ColumnType = "LOOKUP"
)

// IsValid 判断列类型是否合法
func (t ColumnType) IsValid() bool {
	switch t {
	case ColumnText, ColumnNumber, ColumnDate, ColumnDateTime, ColumnBoolean,
		ColumnSelect, ColumnMultiSelect, ColumnRelation,
		ColumnFormula, ColumnRollup, ColumnLookup:
		return true
	}
	return false
}

// IsDerived reports whether the column value is computed on read and never
// stored as a cell.
// IsDerived 判断列值是否为读取时派生（永不落库）。
func (t ColumnType) IsDerived() bool {
	switch t {
	case ColumnFormula, ColumnRollup, ColumnLookup:
		return true
	}
	return false
}

// IsStorable 判断列是否占用单元格存储通道
func (t ColumnType) IsStorable() bool {
	return t.IsValid() && !t.IsDerived() && t != ColumnRelation
}

// ValueKind 返回该列类型存储值应有的标签
func (t ColumnType) ValueKind() cellvalue.Kind {
	switch t {
	case ColumnText, ColumnSelect, ColumnDate, ColumnDateTime:
		return cellvalue.KindText
	case ColumnNumber:
		return cellvalue.KindNumber
	case ColumnBoolean:
		return cellvalue.KindBool
	case ColumnMultiSelect:
		return cellvalue.KindStringList
	case ColumnRelation:
		return cellvalue.KindRowRefList
	}
	return cellvalue.KindNull
}

// RollupTargetKind 将列类型映射到聚合目标约束
func (t ColumnType) RollupTargetKind() rollup.TargetKind {
	switch t {
	case ColumnNumber:
		return rollup.TargetNumber
	case ColumnDate, ColumnDateTime:
		return rollup.TargetDate
	case ColumnBoolean:
		return rollup.TargetBoolean
	}
	return rollup.TargetAny
}

// RelationTarget 关联列的目标种类
type RelationTarget string

const (
	RelationToDatabase RelationTarget = "database"
	RelationToNote     RelationTarget = "note"
)

// LookupMultiplicity 查找列的多值行为
type LookupMultiplicity string

const (
	LookupFirst             LookupMultiplicity = "FIRST"
	LookupListUniqueStrings LookupMultiplicity = "LIST_UNIQUE_STRINGS"
)

const TableNameColumn = "column"

// Column 列定义。派生列与关联列的专用配置共用一张表，未用字段留零值。
type Column struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	DatabaseID int64      `gorm:"column:database_id;not null;index:idx_column_database" json:"databaseId" form:"databaseId"`
	Name       string     `gorm:"column:name;not null" json:"name" form:"name"`
	Position   int64      `gorm:"column:position;not null" json:"position" form:"position"`
	Type       ColumnType `gorm:"column:type;not null" json:"type" form:"type"`

	// RELATION 列配置
	RelationTarget     RelationTarget `gorm:"column:relation_target" json:"relationTarget" form:"relationTarget"`
	RelationDatabaseID int64          `gorm:"column:relation_database_id" json:"relationDatabaseId" form:"relationDatabaseId"`
	InverseColumnID    int64          `gorm:"column:inverse_column_id" json:"inverseColumnId" form:"inverseColumnId"` // 0 表示无反向列

	// FORMULA 列配置
	Expression string `gorm:"column:expression" json:"expression" form:"expression"`

	// ROLLUP 列配置
	RollupRelationColumnID int64       `gorm:"column:rollup_relation_column_id" json:"rollupRelationColumnId" form:"rollupRelationColumnId"`
	RollupTargetColumnID   int64       `gorm:"column:rollup_target_column_id" json:"rollupTargetColumnId" form:"rollupTargetColumnId"`
	RollupFunc             rollup.Func `gorm:"column:rollup_func" json:"rollupFunc" form:"rollupFunc"`

	// LOOKUP 列配置
	LookupRelationColumnID int64              `gorm:"column:lookup_relation_column_id" json:"lookupRelationColumnId" form:"lookupRelationColumnId"`
	LookupTargetField      string             `gorm:"column:lookup_target_field" json:"lookupTargetField" form:"lookupTargetField"` // 列 ID 或笔记伪字段名
	LookupMultiplicity     LookupMultiplicity `gorm:"column:lookup_multiplicity" json:"lookupMultiplicity" form:"lookupMultiplicity"`

	// Rules 校验规则（JSON 数组）
	Rules string `gorm:"column:rules" json:"rules" form:"rules"`

	CreatedAt timex.Time `gorm:"column:created_at;type:datetime" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime" json:"updatedAt" form:"updatedAt"`
}

// TableName Column's table name
func (*Column) TableName() string {
	return TableNameColumn
}

// RuleType 校验规则种类的封闭集合
type RuleType string

const (
	RuleNotEmpty  RuleType = "not_empty"
	RuleIsEmail   RuleType = "is_email"
	RuleMinLength RuleType = "min_length"
	RuleMaxLength RuleType = "max_length"
	RuleMinValue  RuleType = "min_value"
	RuleMaxValue  RuleType = "max_value"
	RuleRegex     RuleType = "regex"
	RuleUnique    RuleType = "unique"
)

// ValidationRule 单条校验规则
type ValidationRule struct {
	Type    RuleType `json:"type"`
	Value   float64  `json:"value,omitempty"`   // min/max 规则的阈值
	Text    string   `json:"text,omitempty"`    // min/max 日期比较用的 ISO 字符串
	Pattern string   `json:"pattern,omitempty"` // regex 规则
	Flags   string   `json:"flags,omitempty"`
	Message string   `json:"message,omitempty"` // 自定义错误消息
}

// ParseRules 解析列上的校验规则，空串返回 nil
func (c *Column) ParseRules() ([]ValidationRule, error) {
	if c.Rules == "" {
		return nil, nil
	}
	var rules []ValidationRule
	if err := sonic.Unmarshal([]byte(c.Rules), &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
