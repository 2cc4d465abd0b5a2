package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
	"github.com/DeepakTayde/rentpe-v1-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusClientClosedRequest is reported when the caller goes away mid-turn
const statusClientClosedRequest = 499

// ChatHandler handles conversational search HTTP requests
type ChatHandler struct {
	sessions *service.SessionManager
	logger   *zap.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(sessions *service.SessionManager, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	start := time.Now()

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message is empty"})
		return
	}

	session := h.sessions.GetOrCreate(req.SessionID)
	result, err := session.Search(c.Request.Context(), req.Message)

	response := model.ChatResponse{SessionID: session.ID()}
	if result != nil {
		response.SearchResult = *result
	}
	response.Took = time.Since(start).Milliseconds()

	if err == nil {
		c.JSON(http.StatusOK, response)
		return
	}

	kind := service.FailureKindOf(err)
	if kind != service.FailureNone {
		response.Error = &model.ChatError{Kind: kind.String(), Message: kind.UserMessage()}
		c.JSON(upstreamStatus(kind), response)
		return
	}

	switch {
	case errors.Is(err, service.ErrEmptyUtterance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message is empty"})
	case errors.Is(err, context.Canceled):
		c.Status(statusClientClosedRequest)
	case errors.Is(err, service.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": "Session expired, start a new conversation"})
	default:
		h.logger.Error("chat turn failed", zap.String("session_id", session.ID()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
	}
}

// Reset handles POST /api/v1/chat/reset
func (h *ChatHandler) Reset(c *gin.Context) {
	var req model.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	session, ok := h.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrSessionNotFound.Error()})
		return
	}

	if err := session.Reset(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrSessionClosed) {
			c.JSON(http.StatusNotFound, gin.H{"error": service.ErrSessionNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.ResetResponse{SessionID: session.ID(), Reset: true})
}

// End handles DELETE /api/v1/chat/:sessionId
func (h *ChatHandler) End(c *gin.Context) {
	id := strings.TrimSpace(c.Param("sessionId"))
	if !h.sessions.Remove(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrSessionNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func upstreamStatus(kind service.FailureKind) int {
	switch kind {
	case service.FailureRateLimited:
		return http.StatusTooManyRequests
	case service.FailureQuotaExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
