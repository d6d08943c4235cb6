package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Info("refresh complete", "features", 5)
	logger.Debug("filtered out")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "refresh complete", line["msg"])
	assert.Equal(t, float64(5), line["features"])
	assert.NotContains(t, buf.String(), "filtered out")
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("pointer enter")

	assert.Contains(t, buf.String(), "msg=\"pointer enter\"")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Refreshes.WithLabelValues("success").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Refreshes.WithLabelValues("success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Refreshes.WithLabelValues("success")))
}
