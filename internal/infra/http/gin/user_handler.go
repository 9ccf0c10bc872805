package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tenderdesk/internal/app/dto"
	directorysvc "tenderdesk/internal/app/services/directory"
	domainuser "tenderdesk/internal/domain/user"
)

// UserHandler serves the account and role catalog.
type UserHandler struct {
	Service *directorysvc.Service
	Logger  *slog.Logger
}

func (h UserHandler) List(c *gin.Context) {
	users, err := h.Service.ListUsers(c.Request.Context(), strings.TrimSpace(c.Query("rolId")))
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	out := make([]dto.User, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUser(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	created, err := h.Service.CreateUser(c.Request.Context(), directorysvc.CreateUserParams{
		RoleID:   req.RoleID,
		UserName: req.UserName,
		Mail:     req.Mail,
		Password: req.Password,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUser(*created))
}

func (h UserHandler) Get(c *gin.Context) {
	u, err := h.Service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUser(*u))
}

func (h UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	updated, err := h.Service.UpdateUser(c.Request.Context(), c.Param("id"), directorysvc.UpdateUserParams{
		RoleID:   req.RoleID,
		UserName: req.UserName,
		Mail:     req.Mail,
		Password: req.Password,
	})
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUser(*updated))
}

func (h UserHandler) Delete(c *gin.Context) {
	if err := h.Service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.respondUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ByRoleKey backs the worker/bidder pickers in the chat panel.
func (h UserHandler) ByRoleKey(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	users, err := h.Service.UsersByRoleKey(c.Request.Context(), key, c.Query("q"))
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	out := make([]dto.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserSummary(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h UserHandler) ListRoles(c *gin.Context) {
	roles, err := h.Service.ListRoles(c.Request.Context())
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	out := make([]dto.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.NewRole(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h UserHandler) CreateRole(c *gin.Context) {
	var req struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if strings.TrimSpace(req.Key) == "" || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key and name are required"})
		return
	}
	role, err := h.Service.CreateRole(c.Request.Context(), req.Key, req.Name)
	if err != nil {
		h.respondUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRole(*role))
}

func (h UserHandler) respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domainuser.ErrRoleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "role not found"})
	case errors.Is(err, domainuser.ErrMailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainuser.ErrMailRequired),
		errors.Is(err, domainuser.ErrNameRequired),
		errors.Is(err, domainuser.ErrInvalidRole),
		errors.Is(err, directorysvc.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("user operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ UserHTTP = (*UserHandler)(nil)
