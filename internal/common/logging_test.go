package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithOutput_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("ticker", "NIFTYBEES.BSE").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, `"ticker":"NIFTYBEES.BSE"`)
}

func TestNewLoggerFromConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "marketpulse.log")
	logger := NewLoggerFromConfig(LoggingConfig{
		Level:      "info",
		Format:     "json",
		Outputs:    []string{"file"},
		FilePath:   path,
		MaxSizeMB:  1,
		MaxBackups: 1,
	})

	logger.Info().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestNewSilentLogger_Discards(t *testing.T) {
	logger := NewSilentLogger()
	logger.Error().Msg("nothing to see")
}
