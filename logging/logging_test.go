package logging_test

import (
	"bytes"
	"testing"

	"github.com/cr7pt0gr4ph7/westie-music-database-sub000/logging"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentFields(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Output: &buf})
	defer logging.Init(logging.Config{})

	l := logging.Component("preprocess")
	l.Debug().Int("batch", 3).Msg("spilled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "preprocess", entry["component"])
	assert.Equal(t, "spilled", entry["message"])
	assert.Equal(t, float64(3), entry["batch"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Output: &buf})
	defer logging.Init(logging.Config{})

	l := logging.Logger()
	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
