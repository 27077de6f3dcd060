package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cardenrich/internal/config"
	"cardenrich/internal/logging"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("pipeline.enrich.done", zap.Int("total", 3))
	logger.Debug("dropped")
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pipeline.enrich.done", entry["msg"])
	assert.Equal(t, float64(3), entry["total"])
	assert.Equal(t, "info", entry["level"])
	assert.NotContains(t, buf.String(), "dropped")
}

func TestNew_ConsoleFormatHonoursDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Level: "debug", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug("extraction.raw_response", zap.String("raw", "{}"))
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "extraction.raw_response")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := logging.New(config.LogConfig{Level: "loud"})

	assert.Error(t, err)
}
