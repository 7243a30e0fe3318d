package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warning "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestJSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: zerolog.InfoLevel, Format: FormatJSON, App: "pethouse", Out: &buf})

	log.With(map[string]any{"request_id": "r1"}).Error("save failed", map[string]any{
		"err":    errors.New("disk full"),
		"pet_id": 7,
		"":       "dropped",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "save failed", line["message"])
	assert.Equal(t, "pethouse", line["app"])
	assert.Equal(t, "r1", line["request_id"])
	assert.Equal(t, "disk full", line["error"])
	assert.EqualValues(t, 7, line["pet_id"])
	assert.NotContains(t, line, "")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: zerolog.WarnLevel, Format: FormatJSON, Out: &buf})

	log.Info("hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestNopIsSilent(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With(map[string]any{"a": 1}).Error("x", nil)
	})
}
