package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tenderdesk/internal/app/dto"
	tendersvc "tenderdesk/internal/app/services/tenders"
	domaintender "tenderdesk/internal/domain/tender"
)

// TenderHandler serves departments and tender requests.
type TenderHandler struct {
	Service *tendersvc.Service
	Logger  *slog.Logger
}

func (h TenderHandler) List(c *gin.Context) {
	filter := domaintender.Filter{
		DepartmentID: strings.TrimSpace(c.Query("departmentId")),
		Status:       strings.TrimSpace(c.Query("status")),
		Category:     strings.TrimSpace(c.Query("category")),
	}
	requests, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	out := make([]dto.TenderRequest, 0, len(requests))
	for _, r := range requests {
		out = append(out, dto.NewTenderRequest(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h TenderHandler) Create(c *gin.Context) {
	var req dto.CreateTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	created, err := h.Service.Create(c.Request.Context(), tendersvc.CreateParams{
		DepartmentID:   req.DepartmentID,
		CreatedBy:      req.CreatedBy,
		Code:           req.Code,
		Category:       req.Category,
		Status:         req.Status,
		RequiredLevels: req.RequiredLevels,
		CurrentLevel:   req.CurrentLevel,
	})
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTenderRequest(*created))
}

func (h TenderHandler) Get(c *gin.Context) {
	request, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTenderRequest(*request))
}

func (h TenderHandler) Update(c *gin.Context) {
	var req dto.UpdateTenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	updated, err := h.Service.Update(c.Request.Context(), c.Param("id"), domaintender.Patch{
		DepartmentID:   req.DepartmentID,
		Code:           req.Code,
		Category:       req.Category,
		Status:         req.Status,
		RequiredLevels: req.RequiredLevels,
		CurrentLevel:   req.CurrentLevel,
	})
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTenderRequest(*updated))
}

func (h TenderHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h TenderHandler) ListDepartments(c *gin.Context) {
	departments, err := h.Service.ListDepartments(c.Request.Context())
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	out := make([]dto.Department, 0, len(departments))
	for _, d := range departments {
		out = append(out, dto.NewDepartment(d))
	}
	c.JSON(http.StatusOK, out)
}

func (h TenderHandler) CreateDepartment(c *gin.Context) {
	var req dto.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	created, err := h.Service.CreateDepartment(c.Request.Context(), req.Name)
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewDepartment(*created))
}

func (h TenderHandler) UpdateDepartment(c *gin.Context) {
	var req dto.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	updated, err := h.Service.UpdateDepartment(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewDepartment(*updated))
}

func (h TenderHandler) DeleteDepartment(c *gin.Context) {
	if err := h.Service.DeleteDepartment(c.Request.Context(), c.Param("id")); err != nil {
		h.respondTenderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h TenderHandler) respondTenderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domaintender.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tender request not found"})
	case errors.Is(err, domaintender.ErrDepartmentMissing):
		c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
	case errors.Is(err, domaintender.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaintender.ErrDepartmentInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domaintender.ErrInvalidDepartment),
		errors.Is(err, domaintender.ErrInvalidCreator),
		errors.Is(err, domaintender.ErrLevelOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("tender operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ TenderHTTP = (*TenderHandler)(nil)
