package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/tasktrack/pkg/logger"
)

type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyActorID    Key = "actor_id"
)

const (
	requestIDHeader = "X-Request-ID"
	// Longer client ids are replaced rather than echoed into logs.
	maxRequestIDLen = 128
)

// Adapter turns a fasthttp request into the context.Context the use cases
// take: bounded by the request timeout and carrying the request id and actor.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach must be called after authentication so the actor is known.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	ctx.Response.Header.Set(requestIDHeader, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if actor := ActorID(ctx); actor != "" {
		stdCtx = context.WithValue(stdCtx, KeyActorID, actor)
		stdCtx = appLogger.ContextWithActor(stdCtx, actor)
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := ctx.Request.Header.UserAgent(); len(ua) > 0 {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, string(ua))
	}
	return stdCtx, cancel
}

func (a *Adapter) Timeout() time.Duration {
	return a.timeout
}

// requestID keeps a client-supplied id when it is short and printable.
func requestID(ctx *fasthttp.RequestCtx) string {
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(requestIDHeader)))
	if id == "" || len(id) > maxRequestIDLen || strings.IndexFunc(id, unprintable) >= 0 {
		return uuid.NewString()
	}
	return id
}

func unprintable(r rune) bool {
	return r < 0x21 || r > 0x7e
}
