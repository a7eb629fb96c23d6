package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "json")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("", "console")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("loud", "json")
	assert.Error(t, err)
}

func TestWithFields(t *testing.T) {
	assert.NotNil(t, WithFields(nil, zap.String("k", "v")))

	core, logs := observer.New(zapcore.InfoLevel)
	logger := WithFields(zap.New(core), BackendFields("gemini", "gemini-2.5-pro")...)
	logger.Info("call")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "gemini", ctx["provider"])
	assert.Equal(t, "gemini-2.5-pro", ctx["model"])
}

func TestBackendFields_SkipsEmpty(t *testing.T) {
	assert.Len(t, BackendFields("", ""), 0)
	assert.Len(t, BackendFields("anthropic", ""), 1)
}
