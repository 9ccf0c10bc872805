package ginserver_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tenderdesk/internal/app/dto"
	"tenderdesk/internal/app/seed"
	authsvc "tenderdesk/internal/app/services/auth"
	chatsvc "tenderdesk/internal/app/services/chat"
	directorysvc "tenderdesk/internal/app/services/directory"
	tendersvc "tenderdesk/internal/app/services/tenders"
	"tenderdesk/internal/chatsync"
	"tenderdesk/internal/client"
	domainchat "tenderdesk/internal/domain/chat"
	"tenderdesk/internal/infra/config"
	ginserver "tenderdesk/internal/infra/http/gin"
	"tenderdesk/internal/infra/obs"
	"tenderdesk/internal/infra/security"
	"tenderdesk/internal/infra/storage/memory"
	"tenderdesk/internal/infra/storage/s3"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	users := memory.NewUserStore()
	tenders := memory.NewTenderStore()
	chats := memory.NewChatStore()
	hasher := security.BcryptHasher{Cost: 4}

	seeder := &seed.Seeder{Users: users, Tenders: tenders, Passwords: hasher}
	require.NoError(t, seeder.Run(context.Background(), true))

	handlers := ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Service: &authsvc.Service{
				Users:     users,
				Passwords: hasher,
				Tokens:    security.RandomTokenGenerator{},
			},
		},
		User: ginserver.UserHandler{
			Service: &directorysvc.Service{Users: users, Passwords: hasher},
		},
		Tender: ginserver.TenderHandler{
			Service: &tendersvc.Service{Tenders: tenders, Users: users},
		},
		Chat: ginserver.ChatHandler{
			Service: &chatsvc.Service{Chats: chats, Users: users},
		},
		Upload: ginserver.UploadHandler{Presigner: s3.NoopPresigner{}},
	}
	cfg := config.Config{Env: "test", HTTPAddr: ":0"}
	server := ginserver.NewServer(cfg, obs.Middleware{}, obs.HealthHandlers{}, handlers)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestLoginWithMailAndUserName(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	byMail := client.New(ts.URL)
	auth, err := byMail.Login(ctx, "bidder@local", "bidder1234")
	require.NoError(t, err)
	require.NotEmpty(t, auth.Token)
	require.Equal(t, "bidder", auth.User.UserName)
	require.NotNil(t, auth.User.Role)
	require.Equal(t, "BIDDER", auth.User.Role.Key)

	byName := client.New(ts.URL)
	_, err = byName.Login(ctx, "worker1", "worker1234")
	require.NoError(t, err)

	_, err = client.New(ts.URL).Login(ctx, "bidder@local", "wrong")
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 401, statusErr.StatusCode)
}

func TestChatWorkflow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	bidder := client.New(ts.URL)
	bidderAuth, err := bidder.Login(ctx, "bidder@local", "bidder1234")
	require.NoError(t, err)

	worker := client.New(ts.URL)
	workerAuth, err := worker.Login(ctx, "worker1@local", "worker1234")
	require.NoError(t, err)

	workers, err := bidder.UsersByRoleKey(ctx, "WORKER", "")
	require.NoError(t, err)
	require.Len(t, workers, 2)

	chat, err := bidder.StartChat(ctx, startParams(bidderAuth.User.ID, workerAuth.User.ID, ""))
	require.NoError(t, err)
	require.Equal(t, "OPEN", string(chat.Status))

	// A second start for the same bidder reuses the open conversation.
	again, err := bidder.StartChat(ctx, startParams(bidderAuth.User.ID, "", ""))
	require.NoError(t, err)
	require.Equal(t, chat.ID, again.ID)

	sent, err := bidder.SendMessage(ctx, chat.ID, bidderAuth.User.ID, "buenas tardes")
	require.NoError(t, err)
	require.Equal(t, "buenas tardes", sent.Text)

	messages, err := worker.Messages(ctx, chat.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// The watermark is exclusive, so polling from the last message yields nothing.
	tail, err := worker.Messages(ctx, chat.ID, messages[0].CreatedAt)
	require.NoError(t, err)
	require.Empty(t, tail)

	total, err := worker.UnreadCount(ctx, workerAuth.User.ID)
	require.NoError(t, err)
	require.Equal(t, 1, total)

	require.NoError(t, worker.MarkRead(ctx, chat.ID, workerAuth.User.ID))
	total, err = worker.UnreadCount(ctx, workerAuth.User.ID)
	require.NoError(t, err)
	require.Equal(t, 0, total)

	mine, err := bidder.MyChats(ctx, bidderAuth.User.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "buenas tardes", mine[0].LastMessagePreview)
}

func TestTenderAndDepartmentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	admin := client.New(ts.URL)
	adminAuth, err := admin.Login(ctx, "admin@local", "admin1234")
	require.NoError(t, err)

	departments, err := admin.ListDepartments(ctx)
	require.NoError(t, err)
	require.Len(t, departments, 3)

	created, err := admin.CreateTender(ctx, dto.CreateTenderRequest{
		DepartmentID:   departments[0].ID,
		CreatedBy:      adminAuth.User.ID,
		Code:           "T-2025-001",
		Category:       "services",
		Status:         "DRAFT",
		RequiredLevels: 3,
		CurrentLevel:   1,
	})
	require.NoError(t, err)
	require.Equal(t, "T-2025-001", created.Code)

	fetched, err := admin.GetTender(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, fetched.ID)

	// currentLevel above requiredLevels is rejected.
	_, err = admin.CreateTender(ctx, dto.CreateTenderRequest{
		DepartmentID:   departments[0].ID,
		CreatedBy:      adminAuth.User.ID,
		Code:           "T-2025-002",
		RequiredLevels: 2,
		CurrentLevel:   5,
	})
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 400, statusErr.StatusCode)

	listed, err := admin.ListTenders(ctx, client.TenderFilter{DepartmentID: departments[0].ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestPresignUnavailableWithoutStorage(t *testing.T) {
	ts := newTestServer(t)

	c := client.New(ts.URL)
	_, err := c.PresignUpload(context.Background(), "offer.pdf", "application/pdf", "")
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 503, statusErr.StatusCode)
}

// TestSessionConvergesAgainstServer drives the polling session against the
// real HTTP surface: a bidder sends, the worker's session converges on the
// message and the unread badge without any push channel.
func TestSessionConvergesAgainstServer(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bidder := client.New(ts.URL)
	bidderAuth, err := bidder.Login(ctx, "bidder@local", "bidder1234")
	require.NoError(t, err)

	worker := client.New(ts.URL)
	workerAuth, err := worker.Login(ctx, "worker1@local", "worker1234")
	require.NoError(t, err)

	fast := chatsync.Intervals{
		List:     10 * time.Millisecond,
		Messages: 10 * time.Millisecond,
		Unread:   10 * time.Millisecond,
	}
	bidderSession := chatsync.NewSession(bidder, bidderAuth.User.ID, chatsync.Config{Intervals: fast})
	workerSession := chatsync.NewSession(worker, workerAuth.User.ID, chatsync.Config{Intervals: fast})
	go func() { _ = bidderSession.Run(ctx) }()
	go func() { _ = workerSession.Run(ctx) }()

	_, err = bidderSession.StartChat(ctx, workerAuth.User.ID, "")
	require.NoError(t, err)
	require.NoError(t, bidderSession.Send(ctx, "hola"))

	var chatID string
	require.Eventually(t, func() bool {
		snap := workerSession.Snapshot()
		if snap.Selected == nil || len(snap.Messages) != 1 || snap.Messages[0].Text != "hola" {
			return false
		}
		chatID = snap.Selected.ID
		return true
	}, 5*time.Second, 20*time.Millisecond)

	// After the worker reads the chat, the badge loop converges back to zero.
	require.NoError(t, worker.MarkRead(ctx, chatID, workerAuth.User.ID))
	require.Eventually(t, func() bool {
		return workerSession.Snapshot().Unread == 0
	}, 5*time.Second, 20*time.Millisecond)
}

func startParams(bidderID, workerID, tenderID string) domainchat.StartParams {
	return domainchat.StartParams{BidderUserID: bidderID, WorkerUserID: workerID, TenderRequestID: tenderID}
}
