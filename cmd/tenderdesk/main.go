package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tenderdesk/internal/app/seed"
	authsvc "tenderdesk/internal/app/services/auth"
	chatsvc "tenderdesk/internal/app/services/chat"
	directorysvc "tenderdesk/internal/app/services/directory"
	tendersvc "tenderdesk/internal/app/services/tenders"
	domainchat "tenderdesk/internal/domain/chat"
	domaintender "tenderdesk/internal/domain/tender"
	domainuser "tenderdesk/internal/domain/user"
	"tenderdesk/internal/infra/config"
	mongodb "tenderdesk/internal/infra/db/mongo"
	ginserver "tenderdesk/internal/infra/http/gin"
	"tenderdesk/internal/infra/obs"
	"tenderdesk/internal/infra/security"
	"tenderdesk/internal/infra/storage/memory"
	"tenderdesk/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	stores, ready, cleanup, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	hasher := security.BcryptHasher{}
	seeder := &seed.Seeder{
		Users:     stores.users,
		Tenders:   stores.tenders,
		Passwords: hasher,
		Logger:    logger,
	}
	if err := seeder.Run(ctx, cfg.SeedDemoData); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	presigner, err := buildPresigner(cfg, logger)
	if err != nil {
		logger.Warn("s3 presigner unavailable, uploads disabled", "error", err)
		presigner = s3.NoopPresigner{}
	}

	handlers := ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Service: &authsvc.Service{
				Users:     stores.users,
				Passwords: hasher,
				Tokens:    security.RandomTokenGenerator{},
				Logger:    logger,
			},
			Logger: logger,
		},
		User: ginserver.UserHandler{
			Service: &directorysvc.Service{Users: stores.users, Passwords: hasher, Logger: logger},
			Logger:  logger,
		},
		Tender: ginserver.TenderHandler{
			Service: &tendersvc.Service{Tenders: stores.tenders, Users: stores.users, Logger: logger},
			Logger:  logger,
		},
		Chat: ginserver.ChatHandler{
			Service: &chatsvc.Service{Chats: stores.chats, Users: stores.users, Logger: logger},
			Logger:  logger,
		},
		Upload: ginserver.UploadHandler{Presigner: presigner, Logger: logger},
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: ready}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", storageKind(cfg))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	users   domainuser.Store
	tenders domaintender.Store
	chats   domainchat.Store
}

// buildStores selects Mongo when MONGO_URI is set and falls back to the
// in-memory stores otherwise.
func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func(context.Context) error, func(), error) {
	if cfg.MongoURI == "" {
		logger.Info("MONGO_URI not set, using in-memory storage")
		return stores{
			users:   memory.NewUserStore(),
			tenders: memory.NewTenderStore(),
			chats:   memory.NewChatStore(),
		}, nil, func() {}, nil
	}

	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return stores{}, nil, nil, err
	}
	cleanup := func() {
		closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelClose()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", "error", err)
		}
	}
	return stores{
		users:   mongodb.NewUserStore(client.DB),
		tenders: mongodb.NewTenderStore(client.DB),
		chats:   mongodb.NewChatStore(client.DB),
	}, client.Ping, cleanup, nil
}

func buildPresigner(cfg config.Config, logger *slog.Logger) (s3.Presigner, error) {
	return s3.NewClient(
		cfg.S3Endpoint,
		cfg.S3UseSSL,
		cfg.S3AccessKey,
		cfg.S3SecretKey,
		cfg.S3Bucket,
		cfg.S3PublicEndpoint,
		cfg.PresignTTL,
		logger,
	)
}

func storageKind(cfg config.Config) string {
	if cfg.MongoURI == "" {
		return "memory"
	}
	return "mongo"
}
