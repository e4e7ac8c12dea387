// Package http wires the gin engine and routes.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sessionApp "clinica/internal/application/session"
	"clinica/internal/interfaces/http/handlers"
	"clinica/internal/shared/logger"
)

type Router struct {
	engine         *gin.Engine
	sessionHandler *handlers.SessionHandler
}

func NewRouter(sessionService *sessionApp.Service, log logger.Interface) *Router {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))

	return &Router{
		engine:         engine,
		sessionHandler: handlers.NewSessionHandler(sessionService, log.Named("session_handler")),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	{
		api.POST("/sessions", r.sessionHandler.Create)
		api.POST("/sessions/:sessionId/validate", r.sessionHandler.Validate)
		api.DELETE("/sessions/:sessionId", r.sessionHandler.Terminate)
		api.GET("/users/:userId/sessions", r.sessionHandler.List)
		api.DELETE("/users/:userId/sessions", r.sessionHandler.TerminateAll)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func requestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
			)
		}
	}
}
