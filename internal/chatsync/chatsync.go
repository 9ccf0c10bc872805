// Package chatsync keeps a user's chat view fresh by polling the API: the
// conversation list, the selected conversation's message log, and the
// aggregate unread badge each run on their own loop. All three converge
// eventually; nothing is pushed.
package chatsync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainchat "tenderdesk/internal/domain/chat"
)

var (
	ErrNoSelection  = errors.New("chatsync: no conversation selected")
	ErrUnknownChat  = errors.New("chatsync: chat not in the current list")
	ErrTextRequired = errors.New("chatsync: message text is required")
)

// API is the chat surface the synchronizers poll and command.
// *client.Client satisfies it.
type API interface {
	MyChats(ctx context.Context, userID string) ([]domainchat.Chat, error)
	Messages(ctx context.Context, chatID string, after time.Time) ([]domainchat.Message, error)
	SendMessage(ctx context.Context, chatID, senderUserID, text string) (domainchat.Message, error)
	MarkRead(ctx context.Context, chatID, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
	StartChat(ctx context.Context, params domainchat.StartParams) (domainchat.Chat, error)
}

// Intervals are the per-loop poll periods: a snappy message loop, a slower
// list, a lazy badge.
type Intervals struct {
	List     time.Duration
	Messages time.Duration
	Unread   time.Duration
}

// DefaultIntervals returns the production poll periods.
func DefaultIntervals() Intervals {
	return Intervals{
		List:     4 * time.Second,
		Messages: 1500 * time.Millisecond,
		Unread:   5 * time.Second,
	}
}

func (i Intervals) withDefaults() Intervals {
	def := DefaultIntervals()
	if i.List <= 0 {
		i.List = def.List
	}
	if i.Messages <= 0 {
		i.Messages = def.Messages
	}
	if i.Unread <= 0 {
		i.Unread = def.Unread
	}
	return i
}

// Config tunes a Session.
type Config struct {
	Intervals Intervals
	Logger    *slog.Logger
}

// Snapshot is a consistent copy of the view state for rendering.
type Snapshot struct {
	Chats    []domainchat.Chat
	Selected *domainchat.Chat
	Messages []domainchat.Message
	Unread   int
}
