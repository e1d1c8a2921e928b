package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger *zap.Logger
)

// Logger returns the process-wide logger, building it on first use.
func Logger() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	})
	return logger
}

// SetLevel changes the minimum level of the process-wide logger. Unknown
// names leave the level unchanged and return false.
func SetLevel(name string) bool {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return false
	}
	level.SetLevel(lvl)
	return true
}
