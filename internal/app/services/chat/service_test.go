package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domainchat "tenderdesk/internal/domain/chat"
	domainuser "tenderdesk/internal/domain/user"
	"tenderdesk/internal/infra/storage/memory"
)

type fixture struct {
	service *Service
	users   *memory.UserStore
	chats   *memory.ChatStore

	bidderID  string
	worker1ID string
	worker2ID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserStore()
	chats := memory.NewChatStore()

	bidderRole := &domainuser.Role{ID: uuid.NewString(), Key: domainuser.RoleBidder, Name: "Bidder"}
	workerRole := &domainuser.Role{ID: uuid.NewString(), Key: domainuser.RoleWorker, Name: "Worker"}
	require.NoError(t, users.InsertRole(ctx, bidderRole))
	require.NoError(t, users.InsertRole(ctx, workerRole))

	f := &fixture{users: users, chats: chats}
	f.bidderID = insertUser(t, users, bidderRole.ID, "bidder", "bidder@test.local")
	f.worker1ID = insertUser(t, users, workerRole.ID, "worker1", "worker1@test.local")
	f.worker2ID = insertUser(t, users, workerRole.ID, "worker2", "worker2@test.local")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.service = &Service{
		Chats: chats,
		Users: users,
		Now:   func() time.Time { now = now.Add(time.Second); return now },
	}
	return f
}

func insertUser(t *testing.T, users *memory.UserStore, roleID, name, mail string) string {
	t.Helper()
	u := &domainuser.User{ID: uuid.NewString(), RoleID: roleID, UserName: name, Mail: mail}
	require.NoError(t, users.Insert(context.Background(), u))
	return u.ID
}

func TestStartAssignsWorkerAtRandom(t *testing.T) {
	f := newFixture(t)
	f.service.PickIndex = func(n int) int { return n - 1 }

	chat, err := f.service.Start(context.Background(), domainchat.StartParams{BidderUserID: f.bidderID})
	require.NoError(t, err)
	require.Equal(t, f.bidderID, chat.BidderUserID)
	require.Equal(t, domainchat.StatusOpen, chat.Status)
	// Workers come back sorted by userName, so the last index is worker2.
	require.Equal(t, f.worker2ID, chat.WorkerUserID)
}

func TestStartReusesOpenChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)
	second, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestStartScopedByTenderRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	general, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)
	scoped, err := f.service.Start(ctx, domainchat.StartParams{
		BidderUserID:    f.bidderID,
		WorkerUserID:    f.worker1ID,
		TenderRequestID: "tender-1",
	})
	require.NoError(t, err)
	require.NotEqual(t, general.ID, scoped.ID)

	again, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, TenderRequestID: "tender-1"})
	require.NoError(t, err)
	require.Equal(t, scoped.ID, again.ID)
}

func TestStartRejectsForcedNonWorker(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Start(context.Background(), domainchat.StartParams{
		BidderUserID: f.bidderID,
		WorkerUserID: f.bidderID,
	})
	require.ErrorIs(t, err, ErrNotWorker)
}

func TestStartFailsWithoutWorkers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Delete(ctx, f.worker1ID))
	require.NoError(t, f.users.Delete(ctx, f.worker2ID))

	_, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID})
	require.ErrorIs(t, err, domainchat.ErrNoWorkers)
}

func TestSendUpdatesCounterpartUnreadAndPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)

	_, err = f.service.Send(ctx, chat.ID, f.bidderID, "hola")
	require.NoError(t, err)

	stored, err := f.chats.ByID(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.UnreadWorker)
	require.Equal(t, 0, stored.UnreadBidder)
	require.Equal(t, "hola", stored.LastMessagePreview)
	require.False(t, stored.LastMessageAt.IsZero())

	_, err = f.service.Send(ctx, chat.ID, f.worker1ID, "qué tal")
	require.NoError(t, err)

	stored, err = f.chats.ByID(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.UnreadWorker)
	require.Equal(t, 1, stored.UnreadBidder)
	require.Equal(t, "qué tal", stored.LastMessagePreview)
}

func TestSendTruncatesPreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)

	long := strings.Repeat("ñ", domainchat.PreviewLength+25)
	_, err = f.service.Send(ctx, chat.ID, f.bidderID, long)
	require.NoError(t, err)

	stored, err := f.chats.ByID(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, domainchat.PreviewLength, len([]rune(stored.LastMessagePreview)))
	require.True(t, strings.HasPrefix(long, stored.LastMessagePreview))
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)

	_, err = f.service.Send(ctx, chat.ID, f.bidderID, "")
	require.ErrorIs(t, err, domainchat.ErrTextRequired)

	_, err = f.service.Send(ctx, chat.ID, f.bidderID, strings.Repeat("a", maxTextLength+1))
	require.ErrorIs(t, err, domainchat.ErrTextTooLong)

	_, err = f.service.Send(ctx, chat.ID, f.worker2ID, "hi")
	require.ErrorIs(t, err, domainchat.ErrNotParticipant)

	_, err = f.service.Send(ctx, "missing", f.bidderID, "hi")
	require.ErrorIs(t, err, domainchat.ErrNotFound)
}

func TestSendRejectsClosedChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	closed := &domainchat.Chat{
		ID:           uuid.NewString(),
		BidderUserID: f.bidderID,
		WorkerUserID: f.worker1ID,
		Status:       domainchat.StatusClosed,
	}
	require.NoError(t, f.chats.Insert(ctx, closed))

	_, err := f.service.Send(ctx, closed.ID, f.bidderID, "hello?")
	require.ErrorIs(t, err, domainchat.ErrClosed)
}

func TestMessagesAfterWatermarkIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)

	first, err := f.service.Send(ctx, chat.ID, f.bidderID, "one")
	require.NoError(t, err)
	second, err := f.service.Send(ctx, chat.ID, f.worker1ID, "two")
	require.NoError(t, err)

	all, err := f.service.Messages(ctx, chat.ID, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)

	tail, err := f.service.Messages(ctx, chat.ID, first.CreatedAt, 0)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	require.Equal(t, second.ID, tail[0].ID)

	none, err := f.service.Messages(ctx, chat.ID, second.CreatedAt, 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestMarkReadZeroesOnlyCallerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chat, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)

	_, err = f.service.Send(ctx, chat.ID, f.bidderID, "ping")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, chat.ID, f.worker1ID, "pong")
	require.NoError(t, err)

	require.NoError(t, f.service.MarkRead(ctx, chat.ID, f.bidderID))

	stored, err := f.chats.ByID(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, 0, stored.UnreadBidder)
	require.Equal(t, 1, stored.UnreadWorker)

	require.ErrorIs(t, f.service.MarkRead(ctx, chat.ID, f.worker2ID), domainchat.ErrNotParticipant)
}

func TestUnreadTotalSumsAcrossChats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	chat1, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)
	chat2, err := f.service.Start(ctx, domainchat.StartParams{
		BidderUserID:    f.bidderID,
		WorkerUserID:    f.worker2ID,
		TenderRequestID: "tender-9",
	})
	require.NoError(t, err)

	_, err = f.service.Send(ctx, chat1.ID, f.worker1ID, "a")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, chat2.ID, f.worker2ID, "b")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, chat2.ID, f.worker2ID, "c")
	require.NoError(t, err)

	total, err := f.service.UnreadTotal(ctx, f.bidderID)
	require.NoError(t, err)
	require.Equal(t, 3, total)
}

func TestMineSortsByLastMessageDesc(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	chat1, err := f.service.Start(ctx, domainchat.StartParams{BidderUserID: f.bidderID, WorkerUserID: f.worker1ID})
	require.NoError(t, err)
	chat2, err := f.service.Start(ctx, domainchat.StartParams{
		BidderUserID:    f.bidderID,
		WorkerUserID:    f.worker2ID,
		TenderRequestID: "tender-5",
	})
	require.NoError(t, err)

	_, err = f.service.Send(ctx, chat1.ID, f.bidderID, "older")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, chat2.ID, f.bidderID, "newer")
	require.NoError(t, err)

	mine, err := f.service.Mine(ctx, f.bidderID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, chat2.ID, mine[0].ID)
	require.Equal(t, chat1.ID, mine[1].ID)
}
