package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pmorel/db-agent/internal/agent"
	"github.com/pmorel/db-agent/internal/session"
)

// ChatRequest is the body of POST /api/chat. An absent conversationId starts
// a fresh conversation.
type ChatRequest struct {
	Question       string `json:"question" binding:"required"`
	ConversationID string `json:"conversationId"`
}

// ChatResponse carries the assistant's answer and the conversation id the
// caller must reuse for follow-up turns.
type ChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversationId"`
}

// HandleChat relays one user utterance to the hosted agent and blocks until
// the hosted run terminates. During the run the hosted service may call back
// into the database tools zero or more times; that loop is invisible here.
func (h *Handler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()

	conv, isNew, err := h.store.GetOrCreate(ctx, req.ConversationID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if isNew {
		log.Printf("new conversation %s", conv.ID)
	}

	if err := h.svc.Submit(ctx, conv.ID, "user", req.Question); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	result, err := h.svc.RunAndWait(ctx, conv.ID, h.agentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if result.Status == agent.RunFailed {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "L'agent a échoué à traiter la demande."})
		return
	}

	answer, err := h.svc.LatestReply(ctx, conv.ID)
	if err != nil {
		if errors.Is(err, agent.ErrNoReply) {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Aucune réponse de l'agent."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	if err := h.store.RecordFirstExchange(ctx, conv.ID, req.Question, answer); err != nil {
		log.Printf("record first exchange for %s: %v", conv.ID, err)
	}

	c.JSON(http.StatusOK, ChatResponse{Answer: answer, ConversationID: conv.ID})
}

// conversationTitle is the listing label: the first user message, or a
// placeholder for conversations that have not completed a first exchange.
func conversationTitle(conv session.Conversation) string {
	if conv.FirstQuestion != "" {
		return conv.FirstQuestion
	}
	return "Nouvelle conversation"
}

func (h *Handler) HandleListConversations(c *gin.Context) {
	conversations, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(conversations))
	for _, conv := range conversations {
		out = append(out, gin.H{"id": conv.ID, "title": conversationTitle(conv)})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// messageSender maps hosted roles onto the sender labels the front end
// expects.
func messageSender(role string) string {
	if role == "assistant" {
		return "bot"
	}
	return "user"
}

func (h *Handler) HandleMessages(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if _, err := h.store.Get(ctx, id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Conversation not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	messages, err := h.svc.ListMessages(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(messages))
	for _, msg := range messages {
		out = append(out, gin.H{
			"id":         msg.ID,
			"text":       msg.Text,
			"sender":     messageSender(msg.Role),
			"created_at": msg.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}
