// Package log provides the process-wide structured logger used by every
// other package in this module. Nothing here decides what to log — it
// only decides how.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide sugared logger. Replaced at startup by
// CreateLogger once the requested level and log file are known; until
// then it defaults to a development logger so that package-level init
// code and early tests never see a nil logger.
var Logger = zap.NewExample().Sugar()

func init() {
	l, err := zap.NewDevelopment()
	if err == nil {
		Logger = l.Sugar()
	}
}

// ParseLogLevel maps the NSM_LOG_LEVEL values ("debug", "info", "warn",
// "error") onto a zapcore.Level, defaulting to info on an empty string.
func ParseLogLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// CreateLogger builds a new sugared logger at the given level. When file
// is non-empty, output is additionally written to a rotating file via
// lumberjack; otherwise output goes to stderr only.
func CreateLogger(lvl zapcore.Level, file string) *zap.SugaredLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), lvl),
	}
	if file != "" {
		rotate := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotate), lvl))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()).Sugar()
}
