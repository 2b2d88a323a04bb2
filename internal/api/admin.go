package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// instructionsPreviewLen bounds the instructions text in agent listings.
const instructionsPreviewLen = 200

// UpdateAgentRequest is the body of PUT /admin/agents/:id. Both fields are
// optional; absent fields are left unchanged.
type UpdateAgentRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
}

func truncateInstructions(s string) string {
	runes := []rune(s)
	if len(runes) <= instructionsPreviewLen {
		return s
	}
	return string(runes[:instructionsPreviewLen]) + "..."
}

func (h *Handler) HandleListAgents(c *gin.Context) {
	agents, err := h.svc.ListAgents(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Erreur lors de la récupération des agents : " + err.Error()})
		return
	}

	out := make([]gin.H, 0, len(agents))
	for _, a := range agents {
		out = append(out, gin.H{
			"id":           a.ID,
			"name":         a.Name,
			"model":        a.Model,
			"created_at":   a.CreatedAt.Format(time.RFC3339),
			"instructions": truncateInstructions(a.Instructions),
		})
	}
	c.JSON(http.StatusOK, gin.H{"agents": out})
}

func (h *Handler) HandleDeleteAgent(c *gin.Context) {
	if err := h.svc.DeleteAgent(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Agent supprimé avec succès"})
}

func (h *Handler) HandleUpdateAgent(c *gin.Context) {
	var req UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
		return
	}

	if err := h.svc.UpdateAgent(c.Request.Context(), c.Param("id"), req.Name, req.Instructions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Agent mis à jour avec succès"})
}
