package telemetry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestLineHandler(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo)
	t.Cleanup(func() { Init(slog.LevelInfo) })

	Debugf("hidden %d", 1)
	Infof("simulated %d trials", 500)
	L().With("age_group", "G2011").WithGroup("sim").Warn("skipped fixture", "home", "Solar SC")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "] simulated 500 trials\n")
	assert.Contains(t, out, "WARN: skipped fixture age_group=G2011 sim.home=Solar SC\n")
}
