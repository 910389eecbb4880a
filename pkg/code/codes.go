package code

// Success codes // 成功码
var (
	Success = NewSuss(0, lang{en: "success", zh_cn: "成功"})
)

// Error codes, grouped by subsystem // 错误码，按子系统分组
var (
	ErrorInvalidParams  = NewError(10001, lang{en: "invalid params", zh_cn: "入参错误"})
	ErrorServerInternal = NewError(10002, lang{en: "server internal error", zh_cn: "服务内部错误"})
	ErrorStorage        = NewError(10003, lang{en: "storage operation failed", zh_cn: "存储操作失败"})

	ErrorNotFoundDatabase = NewError(20001, lang{en: "database not found", zh_cn: "数据表不存在"})
	ErrorNotFoundColumn   = NewError(20002, lang{en: "column not found", zh_cn: "列不存在"})
	ErrorNotFoundRow      = NewError(20003, lang{en: "row not found", zh_cn: "行不存在"})
	ErrorNotFoundNote     = NewError(20004, lang{en: "note not found", zh_cn: "笔记不存在"})
	ErrorNotFoundVersion  = NewError(20005, lang{en: "history version not found", zh_cn: "历史版本不存在"})

	ErrorColumnNameTaken = NewError(20101, lang{en: "column name already used in this database", zh_cn: "列名在该数据表中已被使用"})
	ErrorColumnConfig    = NewError(20102, lang{en: "column configuration is invalid", zh_cn: "列配置无效"})
	ErrorRelationTarget  = NewError(20103, lang{en: "relation target does not match the column configuration", zh_cn: "关联目标与列配置不符"})
	ErrorStoredDerived   = NewError(20104, lang{en: "derived columns cannot hold stored values", zh_cn: "派生列不能写入存储值"})

	ErrorValidationFailed = NewError(30001, lang{en: "validation failed", zh_cn: "数据校验未通过"})

	ErrorPermissionDenied = NewError(40001, lang{en: "permission denied", zh_cn: "没有操作权限"})
	ErrorGrantNotAllowed  = NewError(40002, lang{en: "only the owner or an object admin may manage grants", zh_cn: "仅所有者或对象管理员可以管理授权"})

	ErrorNothingToUndo = NewError(50001, lang{en: "nothing to undo", zh_cn: "没有可撤销的变更"})
)
