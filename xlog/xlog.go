package xlog

var (
	rootLogger *zLogger
)

// Debug 输出"Debug"级别日志信息；
func Debug(args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Debug(args...)
}

// Debugf 输出格式化的"Debug"级别日志信息；
func Debugf(format string, args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Debugf(format, args...)
}

// Debugw 输出定制化的"Debug"级别日志信息；
func Debugw(msg string, keysAndValues ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Debugw(msg, keysAndValues...)
}

// Info 输出"Info"级别日志信息；
func Info(args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Info(args...)
}

// Infof 输出格式化的"Info"级别日志信息；
func Infof(format string, args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Infof(format, args...)
}

// Infow 输出定制化的"Info"级别日志信息；
func Infow(msg string, keysAndValues ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Infow(msg, keysAndValues...)
}

// Warn 输出"Warn"级别日志信息；
func Warn(args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Warn(args...)
}

// Warnf 输出格式化的"Warn"级别日志信息；
func Warnf(format string, args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Warnf(format, args...)
}

// Warnw 输出定制化的"Warn"级别日志信息；
func Warnw(msg string, keysAndValues ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Warnw(msg, keysAndValues...)
}

// Error 输出"Error"级别日志信息；
func Error(args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Error(args...)
}

// Errorf 输出格式化的"Error"级别日志信息；
func Errorf(format string, args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Errorf(format, args...)
}

// Errorw 输出定制化的"Error"级别日志信息；
func Errorw(msg string, keysAndValues ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Errorw(msg, keysAndValues...)
}

// Fatal 输出"Fatal"级别日志信息，并使程序退出（os.Exit(1)）；
func Fatal(args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Fatal(args...)
}

// Fatalf 输出格式化的"Fatal"级别日志信息，并使程序退出（os.Exit(1)）；
func Fatalf(format string, args ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Fatalf(format, args...)
}

// Fatalw 输出定制化的"Fatal"级别日志信息，并使程序退出（os.Exit(1)）；
func Fatalw(msg string, keysAndValues ...any) {
	if rootLogger == nil {
		initDefaultLogger()
	}
	rootLogger.Fatalw(msg, keysAndValues...)
}
