package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"tenderdesk/internal/app/dto"
	authsvc "tenderdesk/internal/app/services/auth"
)

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

func (h AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.Service.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("login failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	response := dto.AuthResponse{
		Token: result.Token,
		User: dto.AuthUser{
			ID:       result.User.ID,
			UserName: result.User.UserName,
			Mail:     result.User.Mail,
			RoleID:   result.User.RoleID,
		},
	}
	if result.Role != nil {
		response.User.Role = &dto.RoleRef{Key: result.Role.Key, Name: result.Role.Name}
	}
	c.JSON(http.StatusOK, response)
}

var _ AuthHTTP = (*AuthHandler)(nil)
