package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, Config{Level: "warn"})
	log.Info().Msg("hidden")
	log.Warn().Str("ticker", "AAPL").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "one json line expected, got %q", buf.String())
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "AAPL", entry["ticker"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewWriter_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, Config{Level: "chatty"})
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	log.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
