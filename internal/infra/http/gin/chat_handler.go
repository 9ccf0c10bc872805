package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"

	"tenderdesk/internal/app/dto"
	chatsvc "tenderdesk/internal/app/services/chat"
	domainchat "tenderdesk/internal/domain/chat"
)

// ChatHandler bridges HTTP with the chat service.
type ChatHandler struct {
	Service *chatsvc.Service
	Logger  *slog.Logger
}

// Start returns an existing OPEN chat for the bidder or creates one.
func (h ChatHandler) Start(c *gin.Context) {
	var req dto.StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.BidderUserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bidderUserId is required"})
		return
	}
	chat, err := h.Service.Start(c.Request.Context(), domainchat.StartParams{
		BidderUserID:    strings.TrimSpace(req.BidderUserID),
		WorkerUserID:    strings.TrimSpace(req.WorkerUserID),
		TenderRequestID: strings.TrimSpace(req.TenderRequestID),
	})
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewChat(*chat))
}

// Mine lists the user's chats, most recent message first.
func (h ChatHandler) Mine(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	chats, err := h.Service.Mine(c.Request.Context(), userID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	out := make([]dto.Chat, 0, len(chats))
	for _, chat := range chats {
		out = append(out, dto.NewChat(chat))
	}
	c.JSON(http.StatusOK, out)
}

// Messages returns messages created strictly after the "after" watermark.
func (h ChatHandler) Messages(c *gin.Context) {
	chatID := strings.TrimSpace(c.Param("id"))
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat id is required"})
		return
	}
	var after time.Time
	if raw := strings.TrimSpace(c.Query("after")); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "after must be an RFC 3339 timestamp"})
			return
		}
		after = parsed
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	messages, err := h.Service.Messages(c.Request.Context(), chatID, after, limit)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	out := make([]dto.ChatMessage, 0, len(messages))
	for _, message := range messages {
		out = append(out, dto.NewChatMessage(message))
	}
	c.JSON(http.StatusOK, out)
}

// Send posts a message to an OPEN chat.
func (h ChatHandler) Send(c *gin.Context) {
	chatID := strings.TrimSpace(c.Param("id"))
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.SenderUserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "senderUserId is required"})
		return
	}
	message, err := h.Service.Send(c.Request.Context(), chatID, strings.TrimSpace(req.SenderUserID), req.Text)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewChatMessage(*message))
}

// MarkRead zeroes the caller's unread counter on the chat.
func (h ChatHandler) MarkRead(c *gin.Context) {
	chatID := strings.TrimSpace(c.Param("id"))
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	if err := h.Service.MarkRead(c.Request.Context(), chatID, userID); err != nil {
		h.respondChatError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnreadCount returns the user's total unread messages across all chats.
func (h ChatHandler) UnreadCount(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	total, err := h.Service.UnreadTotal(c.Request.Context(), userID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCount{Total: total})
}

func (h ChatHandler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainchat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
	case errors.Is(err, domainchat.ErrClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "chat is closed"})
	case errors.Is(err, domainchat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a chat participant"})
	case errors.Is(err, domainchat.ErrTextRequired),
		errors.Is(err, domainchat.ErrTextTooLong),
		errors.Is(err, chatsvc.ErrNotWorker):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainchat.ErrNoWorkers):
		c.JSON(http.StatusConflict, gin.H{"error": "no workers available"})
	default:
		if h.Logger != nil {
			h.Logger.Error("chat operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ChatHTTP = (*ChatHandler)(nil)
