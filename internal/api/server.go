// Package api exposes the conversational and admin REST endpoints over gin.
//
// Failure handling is deliberately flat: every internal or hosted-service
// failure becomes a 500 with a {"detail": "..."} body, the contract the web
// front end expects. Only the message-listing
// endpoint distinguishes an unknown conversation with a 404.
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pmorel/db-agent/internal/agent"
	"github.com/pmorel/db-agent/internal/session"
)

// Handler carries the services the endpoints need. It is constructed once in
// the composition root and injected here; no package-level state.
type Handler struct {
	svc     agent.Service
	store   session.Store
	agentID string
}

func NewHandler(svc agent.Service, store session.Store, agentID string) *Handler {
	return &Handler{svc: svc, store: store, agentID: agentID}
}

// NewRouter builds the gin engine with CORS restricted to the configured
// origin allow-list; all methods and headers are permitted for those origins.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Hello, World!"})
	})

	api := engine.Group("/api")
	{
		api.POST("/chat", h.HandleChat)
		api.GET("/conversations", h.HandleListConversations)
		api.GET("/conversations/:id/messages", h.HandleMessages)
	}

	admin := engine.Group("/admin")
	{
		admin.GET("/agents", h.HandleListAgents)
		admin.DELETE("/agents/:id", h.HandleDeleteAgent)
		admin.PUT("/agents/:id", h.HandleUpdateAgent)
	}

	return engine
}
