package chatsync

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	domainchat "tenderdesk/internal/domain/chat"
	"tenderdesk/internal/poll"
)

// Session owns the view state for one user's chat panel: the conversation
// list, the selection, the selected conversation's message log, and the
// unread badge. It is scoped to a single viewer; switching accounts means
// cancelling the run context and building a new Session.
type Session struct {
	api       API
	userID    string
	intervals Intervals
	logger    *slog.Logger

	mu          sync.Mutex
	chats       []domainchat.Chat
	selected    domainchat.Chat
	hasSelected bool
	messages    []domainchat.Message
	watermark   time.Time
	// epoch increments on every selection change; message fetches started
	// under an older epoch are discarded when they land.
	epoch  uint64
	unread int

	updates chan struct{}
}

// NewSession builds a session for the given viewer.
func NewSession(a API, userID string, cfg Config) *Session {
	return &Session{
		api:       a,
		userID:    userID,
		intervals: cfg.Intervals.withDefaults(),
		logger:    cfg.Logger,
		updates:   make(chan struct{}, 1),
	}
}

// UserID returns the viewer this session polls for.
func (s *Session) UserID() string { return s.userID }

// Updates signals after any state change. The channel coalesces: a pending
// signal covers any number of changes since the last receive.
func (s *Session) Updates() <-chan struct{} { return s.updates }

// Run starts the three poll loops and blocks until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	loops := []*poll.Poller{
		{Name: "chat-list", Interval: s.intervals.List, Tick: s.listTick, Logger: s.logger},
		{Name: "messages", Interval: s.intervals.Messages, Tick: s.messagesTick, Logger: s.logger},
		{Name: "unread", Interval: s.intervals.Unread, Tick: s.unreadTick, Logger: s.logger},
	}
	var wg sync.WaitGroup
	for _, loop := range loops {
		wg.Add(1)
		go func(p *poll.Poller) {
			defer wg.Done()
			_ = p.Run(ctx)
		}(loop)
	}
	wg.Wait()
	return ctx.Err()
}

// Snapshot copies the current view state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Chats:    append([]domainchat.Chat(nil), s.chats...),
		Messages: append([]domainchat.Message(nil), s.messages...),
		Unread:   s.unread,
	}
	if s.hasSelected {
		sel := s.selected
		snap.Selected = &sel
	}
	return snap
}

// Select switches the panel to a conversation from the current list. The
// message log and watermark are reset before the next fetch, and a mark-read
// is issued fire-and-forget for the viewer.
func (s *Session) Select(ctx context.Context, chatID string) error {
	s.mu.Lock()
	var target *domainchat.Chat
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			target = &s.chats[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return ErrUnknownChat
	}
	if s.hasSelected && s.selected.ID == chatID {
		s.mu.Unlock()
		return nil
	}
	s.selectLocked(ctx, *target)
	s.mu.Unlock()
	s.notify()
	return nil
}

// StartChat creates (or reuses) a conversation with the viewer as bidder and
// makes it the selection. The list loop picks it up on its next tick.
func (s *Session) StartChat(ctx context.Context, workerUserID, tenderRequestID string) (domainchat.Chat, error) {
	created, err := s.api.StartChat(ctx, domainchat.StartParams{
		BidderUserID:    s.userID,
		WorkerUserID:    workerUserID,
		TenderRequestID: tenderRequestID,
	})
	if err != nil {
		return domainchat.Chat{}, err
	}
	s.mu.Lock()
	s.selectLocked(ctx, created)
	s.mu.Unlock()
	s.notify()
	return created, nil
}

// Send posts a message to the selected conversation. There is no optimistic
// local append: the message shows up through the next message tick. On error
// the caller keeps the text and may retry.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrTextRequired
	}
	s.mu.Lock()
	if !s.hasSelected {
		s.mu.Unlock()
		return ErrNoSelection
	}
	chatID := s.selected.ID
	s.mu.Unlock()
	_, err := s.api.SendMessage(ctx, chatID, s.userID, text)
	return err
}

// selectLocked installs a new selection: fresh log, fresh watermark, bumped
// epoch so an in-flight fetch for the previous selection cannot land here.
// Callers hold s.mu.
func (s *Session) selectLocked(ctx context.Context, c domainchat.Chat) {
	s.selected = c
	s.hasSelected = true
	s.messages = nil
	s.watermark = time.Time{}
	s.epoch++

	chatID := c.ID
	go func() {
		if err := s.api.MarkRead(ctx, chatID, s.userID); err != nil && s.logger != nil {
			s.logger.Debug("mark read failed", "chat_id", chatID, "error", err)
		}
	}()
}

func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
