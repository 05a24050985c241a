package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ayurvedic_assistant.log")
	logger, err := New(Options{Level: "debug", File: path, Quiet: true})
	require.NoError(t, err)
	logger.Debug("indexed", zap.Int("chunks", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chunks":3`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestQuietWithoutFileIsNop(t *testing.T) {
	logger, err := New(Options{Quiet: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NotNil(t, OrNop(nil))
}
