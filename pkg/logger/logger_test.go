package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_Levels(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(&buf, false)
	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Str("receipt_no", "IBR-2024-000001").Msg("sale recorded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sale recorded", entry["message"])
	assert.Equal(t, "IBR-2024-000001", entry["receipt_no"])
	assert.Contains(t, entry, "time")
}

func TestNewWithWriter_Debug(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(&buf, true)
	log.Debug().Msg("visible")

	assert.Contains(t, buf.String(), "visible")
}
