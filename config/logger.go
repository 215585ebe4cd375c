package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志，InitLogger 之前为空实现
var Logger = zap.NewNop().Sugar()

// InitLogger 初始化文件+控制台日志，生产环境控制台只输出 info 以上
func InitLogger(environment string) error {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// 文件日志核心
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   "logs/inner_compass.log",
			MaxSize:    100, // MB
			MaxBackups: 30,
			MaxAge:     90, // days
			Compress:   true,
		}),
		zap.InfoLevel,
	)

	consoleLevel := zap.DebugLevel
	if environment == "production" {
		consoleLevel = zap.InfoLevel
	}
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		consoleLevel,
	)

	core := zapcore.NewTee(fileCore, consoleCore)
	Logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).Sugar()
	return nil
}
