// Package ginserver wires the HTTP surface: routing, CORS and the
// per-request observability middleware.
package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tenderdesk/internal/infra/config"
	"tenderdesk/internal/infra/obs"
)

type AuthHTTP interface {
	Login(c *gin.Context)
}

type UserHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	ByRoleKey(c *gin.Context)
	ListRoles(c *gin.Context)
	CreateRole(c *gin.Context)
}

type TenderHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	ListDepartments(c *gin.Context)
	CreateDepartment(c *gin.Context)
	UpdateDepartment(c *gin.Context)
	DeleteDepartment(c *gin.Context)
}

type ChatHTTP interface {
	Start(c *gin.Context)
	Mine(c *gin.Context)
	Messages(c *gin.Context)
	Send(c *gin.Context)
	MarkRead(c *gin.Context)
	UnreadCount(c *gin.Context)
}

type UploadHTTP interface {
	PresignPut(c *gin.Context)
	PresignGet(c *gin.Context)
}

type Handlers struct {
	Auth   AuthHTTP
	User   UserHTTP
	Tender TenderHTTP
	Chat   ChatHTTP
	Upload UploadHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	// /health pings the store through Ready; /livez only proves the process.
	router.GET("/health", health.Readyz)
	router.GET("/livez", health.Livez)

	if h.Auth != nil {
		router.POST("/auth/login", h.Auth.Login)
	}
	if h.User != nil {
		router.GET("/users", h.User.List)
		router.POST("/users", h.User.Create)
		// Registered before /users/:id would shadow it.
		router.GET("/users/by_role_key", h.User.ByRoleKey)
		router.GET("/users/:id", h.User.Get)
		router.PUT("/users/:id", h.User.Update)
		router.DELETE("/users/:id", h.User.Delete)
		router.GET("/roles", h.User.ListRoles)
		router.POST("/roles", h.User.CreateRole)
	}
	if h.Tender != nil {
		router.GET("/departments", h.Tender.ListDepartments)
		router.POST("/departments", h.Tender.CreateDepartment)
		router.PUT("/departments/:id", h.Tender.UpdateDepartment)
		router.DELETE("/departments/:id", h.Tender.DeleteDepartment)
		router.GET("/tender-requests", h.Tender.List)
		router.POST("/tender-requests", h.Tender.Create)
		router.GET("/tender-requests/:id", h.Tender.Get)
		router.PATCH("/tender-requests/:id", h.Tender.Update)
		router.DELETE("/tender-requests/:id", h.Tender.Delete)
	}
	if h.Chat != nil {
		router.POST("/chats/start", h.Chat.Start)
		router.GET("/chats/mine", h.Chat.Mine)
		router.GET("/chats/unread_count", h.Chat.UnreadCount)
		router.GET("/chats/:id/messages", h.Chat.Messages)
		router.POST("/chats/:id/messages", h.Chat.Send)
		router.POST("/chats/:id/read", h.Chat.MarkRead)
	}
	if h.Upload != nil {
		router.GET("/uploads/s3-presign", h.Upload.PresignPut)
		router.GET("/uploads/s3-presign-get", h.Upload.PresignGet)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
