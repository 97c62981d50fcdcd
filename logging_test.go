package osmfusion

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Debug().Msg("hidden")
	logger.Info().Int("lanelets", 3).Msg("Map loaded")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Map loaded")
	assert.Contains(t, out, "lanelets=3")

	buf.Reset()
	jsonLogger := NewJSONLogger(&buf, true)
	jsonLogger.Debug().Str("file", "map.osm").Msg("Reading")
	assert.Contains(t, buf.String(), `"file":"map.osm"`)
	assert.Contains(t, buf.String(), `"level":"debug"`)
}
