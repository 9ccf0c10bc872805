package chat

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	domainchat "tenderdesk/internal/domain/chat"
	domainuser "tenderdesk/internal/domain/user"
)

var ErrNotWorker = errors.New("chat: workerUserId does not hold the WORKER role")

const (
	maxTextLength   = 4000
	defaultPageSize = 50
	maxPageSize     = 200
)

// Service implements the chat operations over a chat store and the user
// directory (needed for worker assignment).
type Service struct {
	Chats  domainchat.Store
	Users  domainuser.Store
	Logger *slog.Logger

	// Now and PickIndex are injectable for tests.
	Now       func() time.Time
	PickIndex func(n int) int
}

// Start returns an existing OPEN chat for the bidder (and tender, when
// given) or creates one. With no worker forced, one is assigned at random
// from the WORKER role.
func (s *Service) Start(ctx context.Context, params domainchat.StartParams) (*domainchat.Chat, error) {
	existing, err := s.Chats.FindOpen(ctx, params.BidderUserID, params.TenderRequestID)
	if err != nil && !errors.Is(err, domainchat.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	workerID := params.WorkerUserID
	if workerID != "" {
		worker, err := s.Users.ByID(ctx, workerID)
		if err != nil {
			if errors.Is(err, domainuser.ErrNotFound) {
				return nil, ErrNotWorker
			}
			return nil, err
		}
		role, err := s.Users.RoleByKey(ctx, domainuser.RoleWorker)
		if err != nil {
			return nil, err
		}
		if worker.RoleID != role.ID {
			return nil, ErrNotWorker
		}
	} else {
		workerID, err = s.pickRandomWorker(ctx)
		if err != nil {
			return nil, err
		}
	}

	created := &domainchat.Chat{
		ID:              uuid.NewString(),
		TenderRequestID: params.TenderRequestID,
		BidderUserID:    params.BidderUserID,
		WorkerUserID:    workerID,
		Status:          domainchat.StatusOpen,
	}
	if err := s.Chats.Insert(ctx, created); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("chat started", "chat_id", created.ID, "bidder_id", created.BidderUserID, "worker_id", created.WorkerUserID)
	}
	return created, nil
}

// Mine lists the user's chats, most recent message first.
func (s *Service) Mine(ctx context.Context, userID string) ([]domainchat.Chat, error) {
	return s.Chats.Mine(ctx, userID)
}

// Messages returns up to limit messages strictly after the watermark,
// ascending by creation time.
func (s *Service) Messages(ctx context.Context, chatID string, after time.Time, limit int) ([]domainchat.Message, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.Chats.MessagesAfter(ctx, chatID, after, limit)
}

// Send appends a message to an OPEN chat, bumps the counterpart's unread
// counter and refreshes the chat's last-message preview.
func (s *Service) Send(ctx context.Context, chatID, senderUserID, text string) (*domainchat.Message, error) {
	if text == "" {
		return nil, domainchat.ErrTextRequired
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, domainchat.ErrTextTooLong
	}
	target, err := s.Chats.ByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if target.Status != domainchat.StatusOpen {
		return nil, domainchat.ErrClosed
	}
	if !target.IsParticipant(senderUserID) {
		return nil, domainchat.ErrNotParticipant
	}

	now := s.now()
	message := &domainchat.Message{
		ID:           uuid.NewString(),
		ChatID:       chatID,
		SenderUserID: senderUserID,
		Text:         text,
		CreatedAt:    now,
	}
	if err := s.Chats.InsertMessage(ctx, message); err != nil {
		return nil, err
	}
	update := domainchat.SendUpdate{
		Preview:      preview(text),
		At:           now,
		BidderUnread: senderUserID == target.WorkerUserID,
	}
	if err := s.Chats.ApplySend(ctx, chatID, update); err != nil {
		return nil, err
	}
	return message, nil
}

// MarkRead zeroes the caller's unread counter on the chat.
func (s *Service) MarkRead(ctx context.Context, chatID, userID string) error {
	target, err := s.Chats.ByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !target.IsParticipant(userID) {
		return domainchat.ErrNotParticipant
	}
	return s.Chats.ResetUnread(ctx, chatID, userID)
}

// UnreadTotal sums the user's side of the unread counters across all chats.
func (s *Service) UnreadTotal(ctx context.Context, userID string) (int, error) {
	return s.Chats.UnreadTotal(ctx, userID)
}

func (s *Service) pickRandomWorker(ctx context.Context) (string, error) {
	workers, err := s.Users.ByRoleKey(ctx, domainuser.RoleWorker, "")
	if err != nil {
		return "", err
	}
	if len(workers) == 0 {
		return "", domainchat.ErrNoWorkers
	}
	pick := s.PickIndex
	if pick == nil {
		pick = rand.Intn
	}
	return workers[pick(len(workers))].ID, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= domainchat.PreviewLength {
		return text
	}
	return string(runes[:domainchat.PreviewLength])
}
