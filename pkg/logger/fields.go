package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldDatabaseID 数据表 ID 字段
	FieldDatabaseID = "databaseId"

	// FieldColumnID 列 ID 字段
	FieldColumnID = "columnId"

	// FieldRowID 行 ID 字段
	FieldRowID = "rowId"

	// FieldEntityID 历史实体 ID 字段
	FieldEntityID = "entityId"

	// FieldVersion 历史版本号字段
	FieldVersion = "version"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldDuration 耗时字段
	FieldDuration = "duration"
)
