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

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "production", false)

	l.Info().Str("post_id", "7_42").Msg("Published post")
	l.Debug().Msg("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "7_42", entry["post_id"])
	assert.Equal(t, "Published post", entry["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewDevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "development", true)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestCronAdapter(t *testing.T) {
	var buf bytes.Buffer
	// Info from cron is logged at debug level.
	c := Cron(zerolog.New(&buf).Level(zerolog.DebugLevel))

	c.Info("schedule", "entry", 1)
	c.Error(errors.New("boom"), "job panicked", "entry", 1)

	out := buf.String()
	assert.Contains(t, out, `"message":"schedule"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"entry":1`)
}
