package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"tenderdesk/internal/app/dto"
	domainchat "tenderdesk/internal/domain/chat"
)

// StartChat creates a conversation, reusing an existing OPEN one when the
// server finds a match.
func (c *Client) StartChat(ctx context.Context, params domainchat.StartParams) (domainchat.Chat, error) {
	req := dto.StartChatRequest{
		BidderUserID:    params.BidderUserID,
		WorkerUserID:    params.WorkerUserID,
		TenderRequestID: params.TenderRequestID,
	}
	var out dto.Chat
	if err := c.do(ctx, http.MethodPost, "/chats/start", nil, req, &out); err != nil {
		return domainchat.Chat{}, err
	}
	return out.Domain(), nil
}

// MyChats lists the user's conversations, most recent message first.
func (c *Client) MyChats(ctx context.Context, userID string) ([]domainchat.Chat, error) {
	query := url.Values{"userId": {userID}}
	var out []dto.Chat
	if err := c.do(ctx, http.MethodGet, "/chats/mine", query, nil, &out); err != nil {
		return nil, err
	}
	chats := make([]domainchat.Chat, 0, len(out))
	for _, item := range out {
		chats = append(chats, item.Domain())
	}
	return chats, nil
}

// Messages returns messages for a chat with CreatedAt strictly after the
// watermark, ascending. A zero watermark fetches from the beginning.
func (c *Client) Messages(ctx context.Context, chatID string, after time.Time) ([]domainchat.Message, error) {
	query := url.Values{}
	if !after.IsZero() {
		query.Set("after", after.UTC().Format(time.RFC3339Nano))
	}
	var out []dto.ChatMessage
	if err := c.do(ctx, http.MethodGet, "/chats/"+chatID+"/messages", query, nil, &out); err != nil {
		return nil, err
	}
	messages := make([]domainchat.Message, 0, len(out))
	for _, item := range out {
		messages = append(messages, item.Domain())
	}
	return messages, nil
}

// SendMessage posts a message and returns the persisted form.
func (c *Client) SendMessage(ctx context.Context, chatID, senderUserID, text string) (domainchat.Message, error) {
	req := dto.SendMessageRequest{SenderUserID: senderUserID, Text: text}
	var out dto.ChatMessage
	if err := c.do(ctx, http.MethodPost, "/chats/"+chatID+"/messages", nil, req, &out); err != nil {
		return domainchat.Message{}, err
	}
	return out.Domain(), nil
}

// MarkRead zeroes the caller's unread counter on the chat.
func (c *Client) MarkRead(ctx context.Context, chatID, userID string) error {
	query := url.Values{"userId": {userID}}
	return c.do(ctx, http.MethodPost, "/chats/"+chatID+"/read", query, nil, nil)
}

// UnreadCount returns the user's total unread messages across all chats.
func (c *Client) UnreadCount(ctx context.Context, userID string) (int, error) {
	query := url.Values{"userId": {userID}}
	var out dto.UnreadCount
	if err := c.do(ctx, http.MethodGet, "/chats/unread_count", query, nil, &out); err != nil {
		return 0, err
	}
	return out.Total, nil
}
