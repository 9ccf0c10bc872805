package chatsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainchat "tenderdesk/internal/domain/chat"
)

type fakeAPI struct {
	mu       sync.Mutex
	chats    []domainchat.Chat
	messages map[string][]domainchat.Message
	unread   int
	sendErr  error

	markReadCalls []string
	// gate, when set, blocks Messages until released. Used to simulate a
	// fetch still in flight while the selection changes.
	gate chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{messages: make(map[string][]domainchat.Message)}
}

func (f *fakeAPI) MyChats(ctx context.Context, userID string) ([]domainchat.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domainchat.Chat(nil), f.chats...), nil
}

func (f *fakeAPI) Messages(ctx context.Context, chatID string, after time.Time) ([]domainchat.Message, error) {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domainchat.Message
	for _, m := range f.messages[chatID] {
		// Strictly exclusive, like the server's query.
		if m.CreatedAt.After(after) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, chatID, senderUserID, text string) (domainchat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return domainchat.Message{}, f.sendErr
	}
	m := domainchat.Message{ID: "sent", ChatID: chatID, SenderUserID: senderUserID, Text: text, CreatedAt: time.Now()}
	f.messages[chatID] = append(f.messages[chatID], m)
	return m, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, chatID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markReadCalls = append(f.markReadCalls, chatID)
	return nil
}

func (f *fakeAPI) UnreadCount(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread, nil
}

func (f *fakeAPI) StartChat(ctx context.Context, params domainchat.StartParams) (domainchat.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := domainchat.Chat{
		ID:              "c-new",
		BidderUserID:    params.BidderUserID,
		WorkerUserID:    "u9",
		TenderRequestID: params.TenderRequestID,
		Status:          domainchat.StatusOpen,
	}
	return c, nil
}

func (f *fakeAPI) setChats(chats ...domainchat.Chat) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = chats
}

func (f *fakeAPI) addMessage(m domainchat.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[m.ChatID] = append(f.messages[m.ChatID], m)
}

func (f *fakeAPI) readCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.markReadCalls...)
}

func waitReadCalls(t *testing.T, f *fakeAPI, n int) []string {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		calls := f.readCalls()
		if len(calls) >= n {
			return calls
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("expected %d mark-read calls", n)
	return nil
}

func ts(sec int) time.Time {
	return time.Date(2025, time.March, 1, 12, 0, sec, 0, time.UTC)
}

func TestListTickSelectsFirstChat(t *testing.T) {
	api := newFakeAPI()
	api.setChats(
		domainchat.Chat{ID: "c2", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen},
		domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u8", Status: domainchat.StatusOpen},
	)
	s := NewSession(api, "u1", Config{})

	require.NoError(t, s.listTick(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "c2", snap.Selected.ID)
	// Selecting fires a mark-read for the viewer.
	assert.Equal(t, []string{"c2"}, waitReadCalls(t, api, 1))
}

func TestListTickPreservesSelectionAndRefreshesCounters(t *testing.T) {
	api := newFakeAPI()
	api.setChats(
		domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen},
		domainchat.Chat{ID: "c2", BidderUserID: "u1", WorkerUserID: "u8", Status: domainchat.StatusOpen},
	)
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.listTick(context.Background()))
	require.NoError(t, s.Select(context.Background(), "c2"))

	// New snapshot: c2 moved to the front with fresh counters.
	api.setChats(
		domainchat.Chat{ID: "c2", BidderUserID: "u1", WorkerUserID: "u8", Status: domainchat.StatusOpen, UnreadBidder: 7, LastMessagePreview: "news"},
		domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen},
	)
	require.NoError(t, s.listTick(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "c2", snap.Selected.ID, "selection must not be swapped by a list refresh")
	assert.Equal(t, 7, snap.Selected.UnreadBidder)
	assert.Equal(t, "news", snap.Selected.LastMessagePreview)
}

func TestListTickKeepsVanishedSelection(t *testing.T) {
	api := newFakeAPI()
	api.setChats(domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen})
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.listTick(context.Background()))

	api.setChats() // c1 disappears
	require.NoError(t, s.listTick(context.Background()))

	snap := s.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "c1", snap.Selected.ID)
	assert.Empty(t, snap.Chats)
}

func TestWatermarkAdvancesWithoutDuplication(t *testing.T) {
	api := newFakeAPI()
	api.setChats(domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen})
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.listTick(context.Background()))

	for i := 0; i < 5; i++ {
		api.addMessage(domainchat.Message{ID: string(rune('a' + i)), ChatID: "c1", SenderUserID: "u9", Text: "m", CreatedAt: ts(i)})
	}
	require.NoError(t, s.messagesTick(context.Background()))
	require.Len(t, s.Snapshot().Messages, 5)

	// Re-polling with nothing new must not duplicate the last message.
	require.NoError(t, s.messagesTick(context.Background()))
	require.NoError(t, s.messagesTick(context.Background()))
	snap := s.Snapshot()
	require.Len(t, snap.Messages, 5)

	// A newer message extends the log and the watermark.
	api.addMessage(domainchat.Message{ID: "f", ChatID: "c1", SenderUserID: "u1", Text: "m6", CreatedAt: ts(9)})
	require.NoError(t, s.messagesTick(context.Background()))
	snap = s.Snapshot()
	require.Len(t, snap.Messages, 6)
	assert.Equal(t, "f", snap.Messages[5].ID)

	s.mu.Lock()
	watermark := s.watermark
	s.mu.Unlock()
	assert.Equal(t, ts(9), watermark)
}

func TestSelectResetsLogAndWatermark(t *testing.T) {
	api := newFakeAPI()
	api.setChats(
		domainchat.Chat{ID: "a", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen},
		domainchat.Chat{ID: "b", BidderUserID: "u1", WorkerUserID: "u8", Status: domainchat.StatusOpen},
	)
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.listTick(context.Background()))

	api.addMessage(domainchat.Message{ID: "m1", ChatID: "a", SenderUserID: "u9", Text: "hi", CreatedAt: ts(1)})
	require.NoError(t, s.messagesTick(context.Background()))
	require.Len(t, s.Snapshot().Messages, 1)

	require.NoError(t, s.Select(context.Background(), "b"))
	snap := s.Snapshot()
	assert.Empty(t, snap.Messages)
	s.mu.Lock()
	assert.True(t, s.watermark.IsZero())
	s.mu.Unlock()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "b", snap.Selected.ID)
}

func TestLateResponseForPreviousSelectionIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.setChats(
		domainchat.Chat{ID: "a", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen},
		domainchat.Chat{ID: "b", BidderUserID: "u1", WorkerUserID: "u8", Status: domainchat.StatusOpen},
	)
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.listTick(context.Background()))
	api.addMessage(domainchat.Message{ID: "m1", ChatID: "a", SenderUserID: "u9", Text: "stale", CreatedAt: ts(1)})

	gate := make(chan struct{})
	api.mu.Lock()
	api.gate = gate
	api.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.messagesTick(context.Background()) }()

	// While the fetch for "a" hangs, the user switches to "b".
	time.Sleep(5 * time.Millisecond)
	api.mu.Lock()
	api.gate = nil
	api.mu.Unlock()
	require.NoError(t, s.Select(context.Background(), "b"))

	close(gate)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	assert.Empty(t, snap.Messages, "a's late messages must not land in b's log")
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "b", snap.Selected.ID)
}

func TestSendScenario(t *testing.T) {
	api := newFakeAPI()
	api.setChats(domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen})
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.listTick(context.Background()))

	// Sent text is only visible after it round-trips through the poll.
	api.mu.Lock()
	api.messages["c1"] = nil
	api.mu.Unlock()
	require.NoError(t, s.Send(context.Background(), "hola"))
	api.mu.Lock()
	api.messages["c1"][0].CreatedAt = ts(0)
	api.mu.Unlock()

	require.NoError(t, s.messagesTick(context.Background()))
	snap := s.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hola", snap.Messages[0].Text)

	require.NoError(t, s.Send(context.Background(), "qué tal"))
	api.mu.Lock()
	api.messages["c1"][1].CreatedAt = ts(1)
	api.mu.Unlock()

	require.NoError(t, s.messagesTick(context.Background()))
	snap = s.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, []string{"hola", "qué tal"}, []string{snap.Messages[0].Text, snap.Messages[1].Text})
}

func TestSendValidation(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api, "u1", Config{})
	assert.ErrorIs(t, s.Send(context.Background(), "   "), ErrTextRequired)
	assert.ErrorIs(t, s.Send(context.Background(), "hello"), ErrNoSelection)

	api.setChats(domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen})
	require.NoError(t, s.listTick(context.Background()))
	api.sendErr = errors.New("network down")
	err := s.Send(context.Background(), "hello")
	require.Error(t, err)
	// No optimistic append on failure.
	assert.Empty(t, s.Snapshot().Messages)
}

func TestUnreadBadgeScenario(t *testing.T) {
	api := newFakeAPI()
	api.unread = 3
	s := NewSession(api, "u1", Config{})
	require.NoError(t, s.unreadTick(context.Background()))
	assert.Equal(t, 3, s.Snapshot().Unread)

	// Server-side mark-read takes effect on the badge loop's next tick.
	api.mu.Lock()
	api.unread = 0
	api.mu.Unlock()
	require.NoError(t, s.unreadTick(context.Background()))
	assert.Equal(t, 0, s.Snapshot().Unread)
}

func TestStartChatBecomesSelection(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api, "u1", Config{})
	created, err := s.StartChat(context.Background(), "", "t1")
	require.NoError(t, err)
	assert.Equal(t, "u1", created.BidderUserID)

	snap := s.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, created.ID, snap.Selected.ID)
	// The list has not ticked yet; the new chat is not in it.
	assert.Empty(t, snap.Chats)
	waitReadCalls(t, api, 1)
}

func TestSelectUnknownChat(t *testing.T) {
	api := newFakeAPI()
	s := NewSession(api, "u1", Config{})
	assert.ErrorIs(t, s.Select(context.Background(), "nope"), ErrUnknownChat)
}

func TestRunConvergesAndStops(t *testing.T) {
	api := newFakeAPI()
	api.setChats(domainchat.Chat{ID: "c1", BidderUserID: "u1", WorkerUserID: "u9", Status: domainchat.StatusOpen})
	api.addMessage(domainchat.Message{ID: "m1", ChatID: "c1", SenderUserID: "u9", Text: "hi", CreatedAt: ts(1)})
	api.mu.Lock()
	api.unread = 1
	api.mu.Unlock()

	s := NewSession(api, "u1", Config{Intervals: Intervals{
		List:     time.Millisecond,
		Messages: time.Millisecond,
		Unread:   time.Millisecond,
	}})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		snap := s.Snapshot()
		if len(snap.Chats) == 1 && len(snap.Messages) == 1 && snap.Unread == 1 {
			break
		}
		select {
		case <-s.Updates():
		case <-deadline:
			t.Fatal("session never converged")
		}
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
