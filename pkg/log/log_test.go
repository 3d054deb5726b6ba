package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitFormats(t *testing.T) {
	t.Cleanup(func() {
		sugar = zap.NewNop().Sugar()
		initialized = false
	})

	require.NoError(t, Init("debug", "json"))
	assert.True(t, initialized)
	assert.True(t, sugar.Desugar().Core().Enabled(zap.DebugLevel))

	require.NoError(t, Init("not-a-level", "console"))
	assert.False(t, sugar.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, sugar.Desugar().Core().Enabled(zap.InfoLevel))
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Infow("hello", "k", "v")
		Warnw("careful")
		Errorw("failed", "error", assert.AnError)
		Sync()
	})
}
