package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewWithConfig(Config{
		Name:   "test",
		Format: FormatJSON,
		Level:  slog.LevelDebug,
		Writer: buf,
	})
}

func TestLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "test", entry["package"])
}

func TestErrReturnsOriginalError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	original := assert.AnError
	returned := log.Err("something failed", original, "id", 7)

	assert.Same(t, original, returned)
	assert.Contains(t, buf.String(), "something failed")
}

func TestErrorMsgBecomesError(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	err := log.Error("bad input", "field", "price")
	require.Error(t, err)
	assert.Equal(t, "bad input", err.Error())

	err = log.ErrMsg("missing closing date")
	require.Error(t, err)
	assert.Equal(t, "missing closing date", err.Error())
}

func TestFunctionAndFileAttachAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf).File("score").Function("Calculate")

	log.Info("scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "score", entry["file"])
	assert.Equal(t, "Calculate", entry["function"])
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "trace-123")
	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))

	var buf bytes.Buffer
	log := newBufferLogger(&buf).TraceFromContext(ctx)
	log.Info("traced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trace-123", entry["traceID"])
}

func TestTraceFromContextWithoutIDIsNoop(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.TraceFromContext(context.Background()).Info("untraced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry["traceID"]
	assert.False(t, ok)
}
