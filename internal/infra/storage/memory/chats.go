package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainchat "tenderdesk/internal/domain/chat"
)

// ChatStore keeps chats and messages in memory. Not suitable for production.
type ChatStore struct {
	mu       sync.RWMutex
	chats    map[string]*domainchat.Chat
	order    []string
	messages map[string][]domainchat.Message
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		chats:    make(map[string]*domainchat.Chat),
		messages: make(map[string][]domainchat.Message),
	}
}

func (s *ChatStore) Insert(ctx context.Context, c *domainchat.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	s.chats[c.ID] = &clone
	s.order = append(s.order, c.ID)
	return nil
}

func (s *ChatStore) ByID(ctx context.Context, id string) (*domainchat.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.chats[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, domainchat.ErrNotFound
}

func (s *ChatStore) FindOpen(ctx context.Context, bidderUserID, tenderRequestID string) (*domainchat.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		c := s.chats[id]
		if c.BidderUserID != bidderUserID || c.Status != domainchat.StatusOpen {
			continue
		}
		if tenderRequestID != "" && c.TenderRequestID != tenderRequestID {
			continue
		}
		clone := *c
		return &clone, nil
	}
	return nil, domainchat.ErrNotFound
}

func (s *ChatStore) Mine(ctx context.Context, userID string) ([]domainchat.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domainchat.Chat
	for _, id := range s.order {
		c := s.chats[id]
		if c.BidderUserID == userID || c.WorkerUserID == userID {
			out = append(out, *c)
		}
	}
	// Most recent message first; chats with no messages yet sort last.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

func (s *ChatStore) InsertMessage(ctx context.Context, m *domainchat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[m.ChatID] = append(s.messages[m.ChatID], *m)
	return nil
}

func (s *ChatStore) MessagesAfter(ctx context.Context, chatID string, after time.Time, limit int) ([]domainchat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domainchat.Message
	for _, m := range s.messages[chatID] {
		if m.CreatedAt.After(after) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ChatStore) ApplySend(ctx context.Context, chatID string, update domainchat.SendUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return domainchat.ErrNotFound
	}
	c.LastMessagePreview = update.Preview
	c.LastMessageAt = update.At
	if update.BidderUnread {
		c.UnreadBidder++
	} else {
		c.UnreadWorker++
	}
	return nil
}

func (s *ChatStore) ResetUnread(ctx context.Context, chatID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return domainchat.ErrNotFound
	}
	switch userID {
	case c.BidderUserID:
		c.UnreadBidder = 0
	case c.WorkerUserID:
		c.UnreadWorker = 0
	default:
		return domainchat.ErrNotParticipant
	}
	return nil
}

func (s *ChatStore) UnreadTotal(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, c := range s.chats {
		total += c.UnreadFor(userID)
	}
	return total, nil
}

var _ domainchat.Store = (*ChatStore)(nil)
