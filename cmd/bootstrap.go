package cmd

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The bootstrap logger covers the window before global.SetupLogger runs:
// config loading, opening the engine database, schema migration. Always
// console output; the level starts from the DEBUG env var and is adjusted
// to the configured engine level once the config is loaded.
// 启动阶段日志器，覆盖主日志器就绪前的配置加载与建库过程。
var (
	bootstrapLevel  zap.AtomicLevel
	bootstrapLogger *zap.Logger
)

func init() {
	bootstrapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if os.Getenv("DEBUG") != "" {
		bootstrapLevel.SetLevel(zapcore.DebugLevel)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(ec),
		zapcore.Lock(os.Stderr),
		bootstrapLevel,
	)
	bootstrapLogger = zap.New(core, zap.AddCaller())
}

// applyBootstrapLevel 配置加载后按引擎日志配置调整启动日志级别
func applyBootstrapLevel(levelText string) {
	var l zapcore.Level
	if err := l.Set(levelText); err == nil {
		bootstrapLevel.SetLevel(l)
	}
}
