package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ai-chat-go/internal/apperr"
	"ai-chat-go/internal/model"
	"ai-chat-go/internal/service"
)

// ChatHandler 处理对话相关的 HTTP 请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send 处理 POST /api/v1/chat/send，执行一轮完整对话。
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Wrap(apperr.KindValidation, "请求体不合法", err))
		return
	}
	resp, err := h.chatService.SendMessage(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateSession 处理 POST /api/v1/chat/sessions。
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req struct {
		SessionName string `json:"session_name"`
	}
	// 请求体可为空，此时使用默认会话名
	_ = c.ShouldBindJSON(&req)
	session, err := h.chatService.CreateSession(req.SessionName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions 处理 GET /api/v1/chat/sessions。
func (h *ChatHandler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sessions, err := h.chatService.ListSessions(limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
}

// GetSession 处理 GET /api/v1/chat/sessions/:id。
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.chatService.GetSession(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetMessages 处理 GET /api/v1/chat/sessions/:id/messages。
func (h *ChatHandler) GetMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	messages, err := h.chatService.GetMessages(c.Param("id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// DeleteSession 处理 DELETE /api/v1/chat/sessions/:id。
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.chatService.DeleteSession(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "会话已删除"})
}
