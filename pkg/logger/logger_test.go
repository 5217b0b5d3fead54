package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesComponentField(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New(Config{Level: "debug", Out: &buf}), "wacc")
	l.Warn().Str("rating", "Zzz").Msg("unknown rating")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wacc", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Zzz", entry["rating"])
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	_ = New(Config{Level: "loud", Out: &buf})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
