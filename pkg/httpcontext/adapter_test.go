package httpcontext

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appLogger "github.com/fastygo/tasktrack/pkg/logger"
)

func TestAdapter_Attach(t *testing.T) {
	a := NewAdapter(0)
	assert.Equal(t, 5*time.Second, a.Timeout())

	var req fasthttp.RequestCtx
	req.Request.Header.Set("X-Request-ID", "req-42")
	req.Request.Header.SetUserAgent("probe/1.0")
	SetActor(&req, "u-1")

	ctx, cancel := a.Attach(&req)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
	assert.Equal(t, "req-42", string(req.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "probe/1.0", ctx.Value(KeyUserAgent))
	assert.Equal(t, "u-1", ctx.Value(KeyActorID))

	core, logs := observer.New(zap.InfoLevel)
	appLogger.FromContext(ctx, zap.New(core)).Info("hello")
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
		assert.Equal(t, "u-1", entries[0].ContextMap()["actor_id"])
	}
}

func TestAdapter_GeneratesRequestID(t *testing.T) {
	var req fasthttp.RequestCtx
	ctx, cancel := NewAdapter(time.Second).Attach(&req)
	defer cancel()

	assert.NotEmpty(t, string(req.Response.Header.Peek("X-Request-ID")))
	assert.Nil(t, ctx.Value(KeyActorID))
	assert.Empty(t, ActorID(&req))
}

func TestAdapter_ReplacesUnsafeRequestID(t *testing.T) {
	for name, header := range map[string]string{
		"too long": strings.Repeat("a", 129),
		"spaces":   "req 42",
		"control":  "req\x0142",
	} {
		t.Run(name, func(t *testing.T) {
			var req fasthttp.RequestCtx
			req.Request.Header.Set("X-Request-ID", header)
			_, cancel := NewAdapter(time.Second).Attach(&req)
			defer cancel()

			got := string(req.Response.Header.Peek("X-Request-ID"))
			assert.NotEqual(t, header, got)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
		})
	}
}
