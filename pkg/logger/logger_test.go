package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestNew_CamposDelServicio(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Service: "retail-stock-api", Version: "1.2.0", Output: &buf})

	l.Info().Msg("no sale")
	assert.Zero(t, buf.Len())

	l.Named("ledger").Warn().Msg("stock recortado en cero")
	entry := lastEntry(t, &buf)
	assert.Equal(t, "retail-stock-api", entry["service"])
	assert.Equal(t, "1.2.0", entry["version"])
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}

func TestSession(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Output: &buf})

	l.Session("u-1", "L1").Info().Msg("venta")
	entry := lastEntry(t, &buf)
	assert.Equal(t, "u-1", entry["user_id"])
	assert.Equal(t, "L1", entry["location_id"])

	l.Session("", "L2").Info().Msg("traslado")
	entry = lastEntry(t, &buf)
	assert.NotContains(t, entry, "user_id")
	assert.Equal(t, "L2", entry["location_id"])
}

func TestCtx_AgregaTraza(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Output: &buf})

	l.Ctx(context.Background()).Info().Msg("sin traza")
	assert.NotContains(t, lastEntry(t, &buf), "trace_id")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.Ctx(ctx).Info().Msg("con traza")
	entry := lastEntry(t, &buf)
	assert.Equal(t, sc.TraceID().String(), entry["trace_id"])
	assert.Equal(t, sc.SpanID().String(), entry["span_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("debug").String())
	assert.Equal(t, "info", parseLevel("").String())
	assert.Equal(t, "info", parseLevel("ruidoso").String())
}
