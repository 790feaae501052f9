package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	t.Setenv(LevelEnv, "")

	tests := []struct {
		name string
		cfg  Config
		want zapcore.Level
	}{
		{"default is info", Config{}, zapcore.InfoLevel},
		{"debug", Config{Level: "debug"}, zapcore.DebugLevel},
		{"upper case", Config{Level: "WARN"}, zapcore.WarnLevel},
		{"development", Config{Level: "error", Development: true}, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv(LevelEnv, "debug")

	logger, err := New(Config{Level: "error"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Setenv(LevelEnv, "")

	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)

	assert.NotNil(t, NewOrNop(Config{Level: "chatty"}))
}
