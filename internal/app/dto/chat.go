package dto

import (
	"time"

	domainchat "tenderdesk/internal/domain/chat"
)

// Chat is the wire form of a conversation. Field names follow the browser
// client contract (camelCase).
type Chat struct {
	ID                 string     `json:"id"`
	TenderRequestID    string     `json:"tenderRequestId,omitempty"`
	BidderUserID       string     `json:"bidderUserId"`
	WorkerUserID       string     `json:"workerUserId"`
	Status             string     `json:"status"`
	UnreadBidder       int        `json:"unreadBidder"`
	UnreadWorker       int        `json:"unreadWorker"`
	LastMessagePreview string     `json:"lastMessagePreview,omitempty"`
	LastMessageAt      *time.Time `json:"lastMessageAt,omitempty"`
}

// ChatMessage is the wire form of a single message.
type ChatMessage struct {
	ID           string    `json:"id"`
	ChatID       string    `json:"chatId"`
	SenderUserID string    `json:"senderUserId"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StartChatRequest creates (or reuses) a conversation. An empty WorkerUserID
// asks the server to assign a worker at random.
type StartChatRequest struct {
	BidderUserID    string `json:"bidderUserId"`
	WorkerUserID    string `json:"workerUserId,omitempty"`
	TenderRequestID string `json:"tenderRequestId,omitempty"`
}

// SendMessageRequest posts a message to a conversation.
type SendMessageRequest struct {
	SenderUserID string `json:"senderUserId"`
	Text         string `json:"text"`
}

// UnreadCount is the aggregate badge value.
type UnreadCount struct {
	Total int `json:"total"`
}

// NewChat maps a domain chat to its wire form.
func NewChat(c domainchat.Chat) Chat {
	out := Chat{
		ID:                 c.ID,
		TenderRequestID:    c.TenderRequestID,
		BidderUserID:       c.BidderUserID,
		WorkerUserID:       c.WorkerUserID,
		Status:             string(c.Status),
		UnreadBidder:       c.UnreadBidder,
		UnreadWorker:       c.UnreadWorker,
		LastMessagePreview: c.LastMessagePreview,
	}
	if !c.LastMessageAt.IsZero() {
		at := c.LastMessageAt
		out.LastMessageAt = &at
	}
	return out
}

// Domain maps a wire chat back to the domain form (client side).
func (c Chat) Domain() domainchat.Chat {
	out := domainchat.Chat{
		ID:                 c.ID,
		TenderRequestID:    c.TenderRequestID,
		BidderUserID:       c.BidderUserID,
		WorkerUserID:       c.WorkerUserID,
		Status:             domainchat.Status(c.Status),
		UnreadBidder:       c.UnreadBidder,
		UnreadWorker:       c.UnreadWorker,
		LastMessagePreview: c.LastMessagePreview,
	}
	if c.LastMessageAt != nil {
		out.LastMessageAt = *c.LastMessageAt
	}
	return out
}

// NewChatMessage maps a domain message to its wire form.
func NewChatMessage(m domainchat.Message) ChatMessage {
	return ChatMessage{
		ID:           m.ID,
		ChatID:       m.ChatID,
		SenderUserID: m.SenderUserID,
		Text:         m.Text,
		CreatedAt:    m.CreatedAt,
	}
}

// Domain maps a wire message back to the domain form (client side).
func (m ChatMessage) Domain() domainchat.Message {
	return domainchat.Message{
		ID:           m.ID,
		ChatID:       m.ChatID,
		SenderUserID: m.SenderUserID,
		Text:         m.Text,
		CreatedAt:    m.CreatedAt,
	}
}
