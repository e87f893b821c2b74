package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ ILogger = &zLogger{}

type ILogger interface {
	Debug(...any)
	Debugf(string, ...any)
	Debugw(string, ...any)

	Info(...any)
	Infof(string, ...any)
	Infow(string, ...any)

	Warn(...any)
	Warnf(string, ...any)
	Warnw(string, ...any)

	Error(...any)
	Errorf(string, ...any)
	Errorw(string, ...any)

	Fatal(...any)
	Fatalf(string, ...any)
	Fatalw(string, ...any)

	Enabled(level zapcore.Level) bool
	GetSubLoggerWithFields(fields ...zap.Field) ILogger
}

type zLogger struct {
	logger  *zap.Logger
	slogger *zap.SugaredLogger
}

func newzLogger(logger *zap.Logger) *zLogger {
	return &zLogger{
		logger:  logger,
		slogger: logger.Sugar(),
	}
}

// Debug 输出"Debug"级别日志信息；
func (z *zLogger) Debug(args ...any) {
	z.slogger.Debug(args...)
}

// Debugf 输出格式化的"Debug"级别日志信息；
func (z *zLogger) Debugf(template string, args ...any) {
	z.slogger.Debugf(template, args...)
}

// Debugw 输出定制化的"Debug"级别日志信息；
func (z *zLogger) Debugw(msg string, keysAndValues ...any) {
	z.slogger.Debugw(msg, keysAndValues...)
}

// Info 输出"Info"级别日志信息；
func (z *zLogger) Info(args ...any) {
	z.slogger.Info(args...)
}

// Infof 输出格式化的"Info"级别日志信息；
func (z *zLogger) Infof(template string, args ...any) {
	z.slogger.Infof(template, args...)
}

// Infow 输出定制化的"Info"级别日志信息；
func (z *zLogger) Infow(msg string, keysAndValues ...any) {
	z.slogger.Infow(msg, keysAndValues...)
}

// Warn 输出"Warn"级别日志信息；
func (z *zLogger) Warn(args ...any) {
	z.slogger.Warn(args...)
}

// Warnf 输出格式化的"Warn"级别日志信息；
func (z *zLogger) Warnf(template string, args ...any) {
	z.slogger.Warnf(template, args...)
}

// Warnw 输出定制化的"Warn"级别日志信息；
func (z *zLogger) Warnw(msg string, keysAndValues ...any) {
	z.slogger.Warnw(msg, keysAndValues...)
}

// Error 输出"Error"级别日志信息；
func (z *zLogger) Error(args ...any) {
	z.slogger.Error(args...)
}

// Errorf 输出格式化的"Error"级别日志信息；
func (z *zLogger) Errorf(template string, args ...any) {
	z.slogger.Errorf(template, args...)
}

// Errorw 输出定制化的"Error"级别日志信息；
func (z *zLogger) Errorw(msg string, keysAndValues ...any) {
	z.slogger.Errorw(msg, keysAndValues...)
}

// Fatal 输出"Fatal"级别日志信息，并使程序退出（os.Exit(1)）；
func (z *zLogger) Fatal(args ...any) {
	z.slogger.Fatal(args...)
}

// Fatalf 输出格式化的"Fatal"级别日志信息，并使程序退出（os.Exit(1)）；
func (z *zLogger) Fatalf(template string, args ...any) {
	z.slogger.Fatalf(template, args...)
}

// Fatalw 输出定制化的"Fatal"级别日志信息，并使程序退出（os.Exit(1)）；
func (z *zLogger) Fatalw(msg string, keysAndValues ...any) {
	z.slogger.Fatalw(msg, keysAndValues...)
}

// Sync 将zapLogger缓冲内容刷写到输出端
func (z *zLogger) Sync() error {
	return z.logger.Sync()
}

func (z *zLogger) Enabled(level zapcore.Level) bool {
	return z.logger.Core().Enabled(level)
}

// GetSubLoggerWithFields 获取一个子logger，并在子logger中，定制固定的输出内容
func (z *zLogger) GetSubLoggerWithFields(fields ...zap.Field) ILogger {
	return newzLogger(z.logger.With(fields...))
}
