package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"

	apiHandler "github.com/fastygo/tasktrack/api/handler"
)

type Handlers struct {
	Task    *apiHandler.TaskHandler
	Member  *apiHandler.MemberHandler
	Project *apiHandler.ProjectHandler
	Health  *apiHandler.HealthHandler
	Metrics fasthttp.RequestHandler
}

type Options struct {
	MetricsPath string
	EnablePprof bool
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler, opts Options) *router.Router {
	r := router.New()

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}
	if handlers.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, handlers.Metrics)
	}
	if opts.EnablePprof {
		r.ANY("/debug/pprof/{profile:*}", pprofhandler.PprofHandler)
	}

	// Projects
	r.POST("/api/v1/projects", authMiddleware(handlers.Project.CreateProject))
	r.GET("/api/v1/projects/{projectId}", authMiddleware(handlers.Project.GetProject))

	// Members
	r.GET("/api/v1/projects/{projectId}/members", authMiddleware(handlers.Member.ListMembers))
	r.POST("/api/v1/projects/{projectId}/members", authMiddleware(handlers.Member.AddMember))
	r.GET("/api/v1/projects/{projectId}/permissions", authMiddleware(handlers.Member.Permissions))
	r.PUT("/api/v1/members/{id}/role", authMiddleware(handlers.Member.ChangeRole))
	r.DELETE("/api/v1/members/{id}", authMiddleware(handlers.Member.RemoveMember))

	// Invitations
	r.POST("/api/v1/projects/{projectId}/invitations", authMiddleware(handlers.Member.Invite))
	r.GET("/api/v1/invitations", authMiddleware(handlers.Member.ListInvitations))
	r.POST("/api/v1/invitations/{id}/accept", authMiddleware(handlers.Member.AcceptInvitation))
	r.POST("/api/v1/invitations/{id}/reject", authMiddleware(handlers.Member.RejectInvitation))

	// Tasks
	r.GET("/api/v1/projects/{projectId}/tasks", authMiddleware(handlers.Task.ListTasks))
	r.POST("/api/v1/projects/{projectId}/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.PUT("/api/v1/tasks/{id}/status", authMiddleware(handlers.Task.ChangeStatus))
	r.PUT("/api/v1/tasks/{id}/assignee", authMiddleware(handlers.Task.AssignTask))
	r.POST("/api/v1/tasks/{id}/time", authMiddleware(handlers.Task.LogTime))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	return r
}
