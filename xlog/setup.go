package xlog

import (
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/DeRuina/timberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// levelController 日志输出基本控制器
	levelController = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// initDefaultLogger 在没有外部调用Setup进行日志库设置的情况下，进行默认的日志库配置；
func initDefaultLogger() {
	SetupLogger("")
}

// CloseLogger 系统运行结束时，将日志落盘；
func CloseLogger() {
	_ = rootLogger.Sync()
}

func header() string {
	var strs = []string{
		os.Getenv("SERVICE_ID"),
		os.Getenv("INSTANCE_ID"),
	}
	strs = slices.DeleteFunc(strs, func(s string) bool {
		s = strings.TrimSpace(s)
		return s == "" || s == "0"
	})
	return strings.Join(strs, " ")
}

// SetupLogger 配置根logger；logfile为空时只输出到屏幕
func SetupLogger(logfile string) {
	head := header()
	config := zapcore.EncoderConfig{
		CallerKey:     "line",
		LevelKey:      "level",
		MessageKey:    "message",
		TimeKey:       "time",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			str := t.Format("2006-01-02 15:04:05.999")
			encoder.AppendString(str)
			if head != "" {
				encoder.AppendString(head)
			}
		},
		EncodeLevel: func(level zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(strings.ToTitle(level.String()))
		},
		EncodeCaller: func(caller zapcore.EntryCaller, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString("[" + caller.TrimmedPath() + "]")
		},
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	encoder := zapcore.NewConsoleEncoder(config)

	core := zapcore.NewCore(encoder, os.Stdout, levelController)
	// 将日志输出到滚动切割文件中
	if logfile != "" {
		lumberWriterSync := zapcore.AddSync(fileWriter(logfile))
		core = zapcore.NewCore(encoder, lumberWriterSync, levelController)
	}
	_zLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))

	rootLogger = newzLogger(_zLogger)
}

func SetLevel(l zapcore.Level) {
	levelController.SetLevel(l)
}

func fileWriter(path string) io.Writer {
	out := &timberjack.Logger{
		Filename:         path,
		MaxBackups:       7,
		MaxSize:          50,
		MaxAge:           7,
		Compression:      "none",
		LocalTime:        true,
		RotationInterval: 24 * time.Hour,
		BackupTimeFormat: "2006-01-02-15-04-05",
	}
	return out
}
