package dto

import (
	"time"

	domaintender "tenderdesk/internal/domain/tender"
)

// Department is the wire form of a department.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DepartmentRequest creates or replaces a department.
type DepartmentRequest struct {
	Name string `json:"name"`
}

// TenderRequest is the wire form of a tender request.
type TenderRequest struct {
	ID             string `json:"id"`
	DepartmentID   string `json:"departmentId"`
	CreatedBy      string `json:"createdBy"`
	Code           string `json:"code"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	RequiredLevels int    `json:"requiredLevels"`
	CurrentLevel   int    `json:"currentLevel"`
	CreatedAt      string `json:"createdAt"`
	ModifiedAt     string `json:"modifiedAt"`
}

// CreateTenderRequest creates a tender request.
type CreateTenderRequest struct {
	DepartmentID   string `json:"departmentId"`
	CreatedBy      string `json:"createdBy"`
	Code           string `json:"code"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	RequiredLevels int    `json:"requiredLevels"`
	CurrentLevel   int    `json:"currentLevel"`
}

// UpdateTenderRequest patches a tender request; nil fields are untouched.
type UpdateTenderRequest struct {
	DepartmentID   *string `json:"departmentId,omitempty"`
	Code           *string `json:"code,omitempty"`
	Category       *string `json:"category,omitempty"`
	Status         *string `json:"status,omitempty"`
	RequiredLevels *int    `json:"requiredLevels,omitempty"`
	CurrentLevel   *int    `json:"currentLevel,omitempty"`
}

// PresignResponse is returned by GET /uploads/s3-presign.
type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectURL string `json:"objectUrl"`
	Key       string `json:"key"`
}

// PresignGetResponse is returned by GET /uploads/s3-presign-get.
type PresignGetResponse struct {
	URL string `json:"url"`
}

// NewDepartment maps a domain department to its wire form.
func NewDepartment(d domaintender.Department) Department {
	return Department{ID: d.ID, Name: d.Name}
}

// NewTenderRequest maps a domain tender request to its wire form. Timestamps
// travel as RFC 3339 strings.
func NewTenderRequest(r domaintender.Request) TenderRequest {
	return TenderRequest{
		ID:             r.ID,
		DepartmentID:   r.DepartmentID,
		CreatedBy:      r.CreatedBy,
		Code:           r.Code,
		Category:       r.Category,
		Status:         r.Status,
		RequiredLevels: r.RequiredLevels,
		CurrentLevel:   r.CurrentLevel,
		CreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339Nano),
		ModifiedAt:     r.ModifiedAt.UTC().Format(time.RFC3339Nano),
	}
}
