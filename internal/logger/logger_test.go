package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Config{Level: "debug", Format: "json", Output: &buf}))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l := WithComponent("rates")
	l.Info().Str("metal", "GOLD").Msg("metal rate updated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "rates", entry["component"])
	assert.Equal(t, "GOLD", entry["metal"])
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup(Config{Level: "warn", Format: "json", Output: &buf}))
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup(Config{Level: "loud"}))
}
