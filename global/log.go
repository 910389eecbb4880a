package global

import (
	"fmt"
	"os"
	"runtime"

	dumpx "github.com/gookit/goutil/dump"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

func Log() *zap.Logger {
	return Logger
}

// SetupLogger builds the process logger from the loaded config. Console
// output in debug mode, JSON to file (or stderr) otherwise.
// SetupLogger 根据配置构建主日志器。
func SetupLogger() error {
	if Config == nil {
		return fmt.Errorf("global: config must be loaded before the logger")
	}

	level := zapcore.InfoLevel
	if err := level.Set(Config.Log.Level); err != nil {
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	var writer zapcore.WriteSyncer

	if Config.Server.RunMode == "debug" {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
		writer = zapcore.Lock(os.Stderr)
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		if Config.Log.File != "" {
			f, err := os.OpenFile(Config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return err
			}
			writer = zapcore.Lock(f)
		} else {
			writer = zapcore.Lock(os.Stderr)
		}
	}

	core := zapcore.NewCore(encoder, writer, level)
	Logger = zap.New(core, zap.AddCaller())
	return nil
}

// Dump 调试输出，带调用位置
func Dump(a ...any) {
	_, file, line, ok := runtime.Caller(1)
	if ok {
		fmt.Printf("\033[32m%s:%d:\033[0m\n", file, line)
	}
	dumpx.P(a...)
}
