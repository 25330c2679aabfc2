package httpcontext

import "github.com/valyala/fasthttp"

const actorUserValue = "tasktrack.actor_id"

// SetActor stores the authenticated user id on the request.
func SetActor(ctx *fasthttp.RequestCtx, userID string) {
	ctx.SetUserValue(actorUserValue, userID)
}

// ActorID returns the authenticated user id, or "" when the request is anonymous.
func ActorID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(actorUserValue).(string)
	return id
}
