package chat

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

var (
	ErrNotFound       = errors.New("chat: not found")
	ErrClosed         = errors.New("chat: chat is closed")
	ErrNotParticipant = errors.New("chat: user is not a participant")
	ErrNoWorkers      = errors.New("chat: no workers available")
	ErrTextRequired   = errors.New("chat: message text is required")
	ErrTextTooLong    = errors.New("chat: message text exceeds 4000 characters")
)

// PreviewLength caps the denormalized last-message preview on a chat.
const PreviewLength = 140

// Chat is a bidder/worker conversation, optionally tied to a tender request.
// Unread counters are kept per participant side: a send increments the
// counterpart's counter, mark-read zeroes only the caller's own.
type Chat struct {
	ID                 string
	TenderRequestID    string
	BidderUserID       string
	WorkerUserID       string
	Status             Status
	UnreadBidder       int
	UnreadWorker       int
	LastMessagePreview string
	LastMessageAt      time.Time
}

// IsParticipant reports whether the user is one of the two chat sides.
func (c Chat) IsParticipant(userID string) bool {
	return userID == c.BidderUserID || userID == c.WorkerUserID
}

// UnreadFor returns the unread counter belonging to the given participant.
func (c Chat) UnreadFor(userID string) int {
	if userID == c.BidderUserID {
		return c.UnreadBidder
	}
	if userID == c.WorkerUserID {
		return c.UnreadWorker
	}
	return 0
}

// Message is a single chat message. Within a chat, messages are totally
// ordered by CreatedAt; CreatedAt doubles as the pagination watermark.
type Message struct {
	ID           string
	ChatID       string
	SenderUserID string
	Text         string
	CreatedAt    time.Time
}

// StartParams creates or reuses a conversation. WorkerUserID left empty asks
// the server to assign a worker at random; TenderRequestID is optional.
type StartParams struct {
	BidderUserID    string
	WorkerUserID    string
	TenderRequestID string
}

// SendUpdate captures the chat-side bookkeeping of an accepted message.
type SendUpdate struct {
	Preview      string
	At           time.Time
	BidderUnread bool // increment the bidder's counter (sender was the worker)
}

// Store persists chats and their messages.
type Store interface {
	Insert(ctx context.Context, c *Chat) error
	ByID(ctx context.Context, id string) (*Chat, error)
	// FindOpen locates an OPEN chat for the bidder, additionally matching
	// the tender reference when one is given.
	FindOpen(ctx context.Context, bidderUserID, tenderRequestID string) (*Chat, error)
	// Mine lists chats the user participates in, most recent message first.
	Mine(ctx context.Context, userID string) ([]Chat, error)
	InsertMessage(ctx context.Context, m *Message) error
	// MessagesAfter returns up to limit messages with CreatedAt strictly
	// greater than after, ascending. A zero after means "from the start".
	MessagesAfter(ctx context.Context, chatID string, after time.Time, limit int) ([]Message, error)
	ApplySend(ctx context.Context, chatID string, update SendUpdate) error
	ResetUnread(ctx context.Context, chatID, userID string) error
	UnreadTotal(ctx context.Context, userID string) (int, error)
}
