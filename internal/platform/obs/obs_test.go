package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level, "json")
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewLoggerConsole(t *testing.T) {
	logger, err := NewLogger("info", "console")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestTimeOpLogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	func() (err error) {
		defer TimeOp(logger, "test.ok")(&err)
		return nil
	}()
	func() (err error) {
		defer TimeOp(logger, "test.fail")(&err)
		return errors.New("boom")
	}()

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "op done", entries[0].Message)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "op failed", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "test.fail", entries[1].ContextMap()["op"])
}

func TestTimeCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-7")
	err := errors.New("late")
	Time(ctx, "test.req")(&err)

	entries := logs.FilterMessage("op failed").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-7", entries[0].ContextMap()["req_id"])
}
