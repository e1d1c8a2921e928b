package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	defer level.SetLevel(zap.InfoLevel)

	assert.True(t, SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	assert.True(t, SetLevel(" WARN "))
	assert.Equal(t, zapcore.WarnLevel, level.Level())

	assert.False(t, SetLevel("loud"))
	assert.Equal(t, zapcore.WarnLevel, level.Level())
}

func TestLoggerIsShared(t *testing.T) {
	assert.NotNil(t, Logger())
	assert.Same(t, Logger(), Logger())
}
