// Package log wraps a process-wide zap logger.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar       = zap.NewNop().Sugar()
	initialized bool
)

// Init builds the zap logger. format "console" selects the development
// encoder, anything else emits JSON. Until Init runs every call is a no-op.
func Init(level, format string) error {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	var zapConfig zap.Config
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = logLevel
	zapConfig.OutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return err
	}
	sugar = logger.Sugar()
	initialized = true
	return nil
}

// Infow logs an info message with structured key/value pairs.
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

// Infof logs a formatted info message.
func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Warnw logs a warning with structured key/value pairs.
func Warnw(msg string, keysAndValues ...interface{}) {
	sugar.Warnw(msg, keysAndValues...)
}

// Errorw logs an error with structured key/value pairs.
func Errorw(msg string, keysAndValues ...interface{}) {
	sugar.Errorw(msg, keysAndValues...)
}

// Error logs msg together with err.
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

// Fatal logs msg with err and exits the process. Before Init it writes
// through a development logger so startup failures stay visible.
func Fatal(msg string, err error) {
	if !initialized {
		if logger, buildErr := zap.NewDevelopment(); buildErr == nil {
			logger.Sugar().Fatalw(msg, "error", err)
		}
	}
	sugar.Fatalw(msg, "error", err)
}

// Sync flushes buffered entries.
func Sync() {
	_ = sugar.Sync()
}
