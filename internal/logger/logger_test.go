package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_AddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { InitWithWriter("test", &bytes.Buffer{}) })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-7")
	CtxInfo(ctx, "hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-7", entry["user_id"])
	assert.Equal(t, "v", entry["k"])
}

func TestWithEvent_ReplacesRepeatedKeys(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { InitWithWriter("test", &bytes.Buffer{}) })

	ctx := WithEvent(WithEvent(context.Background(), "evt-1", "email.send"), "evt-2", "push.broadcast")
	CtxWithError(ctx, "effect failed", assert.AnError)

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte(`"event_id"`)))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "evt-2", entry["event_id"])
	assert.Equal(t, "push.broadcast", entry["event_type"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
	assert.Equal(t, "ERROR", entry["level"])
}

func TestSideEffectLog_FailureIsWarning(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { InitWithWriter("test", &bytes.Buffer{}) })

	SideEffectLog("email", "property.approved", assert.AnError)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "email", entry["effect"])
}
