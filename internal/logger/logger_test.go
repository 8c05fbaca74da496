package logger

import (
	"os"
	"path/filepath"
	"testing"

	"hospital-equipment-tracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevel(t *testing.T) {
	log, err := New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNewWritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.log")
	log, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Info("reminder cycle finished", zap.Int("sent", 3))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reminder cycle finished")
	assert.Contains(t, string(data), `"sent":3`)
}
