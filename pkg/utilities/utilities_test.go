package utilities

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_MAX_AGE_DAYS", "")
	cfg := ConfigFromEnv()
	assert.Equal(t, Config{Level: "info", MaxAgeDays: 7}, cfg)

	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_MAX_AGE_DAYS", "30")
	cfg = ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Dev)
	assert.Equal(t, 30, cfg.MaxAgeDays)
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("bogus"))
}

func TestInitWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	lg, err := Init(Config{Level: "info", File: path, MaxAgeDays: 1})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
}

func TestIDs(t *testing.T) {
	a, b := NewRecordID(), NewRecordID()
	assert.Len(t, a, 27)
	assert.NotEqual(t, a, b)

	x, y := NewTokenID(), NewTokenID()
	assert.NotEmpty(t, x)
	assert.NotEqual(t, x, y)
}
