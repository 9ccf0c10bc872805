package client

import (
	"context"
	"net/http"
	"net/url"

	"tenderdesk/internal/app/dto"
)

// ListDepartments returns all departments, sorted by name.
func (c *Client) ListDepartments(ctx context.Context) ([]dto.Department, error) {
	var out []dto.Department
	if err := c.do(ctx, http.MethodGet, "/departments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TenderFilter narrows ListTenders.
type TenderFilter struct {
	DepartmentID string
	Status       string
	Category     string
}

// ListTenders returns tender requests matching the filter, newest first.
func (c *Client) ListTenders(ctx context.Context, filter TenderFilter) ([]dto.TenderRequest, error) {
	query := url.Values{}
	if filter.DepartmentID != "" {
		query.Set("departmentId", filter.DepartmentID)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	var out []dto.TenderRequest
	if err := c.do(ctx, http.MethodGet, "/tender-requests", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTender returns a single tender request.
func (c *Client) GetTender(ctx context.Context, id string) (dto.TenderRequest, error) {
	var out dto.TenderRequest
	if err := c.do(ctx, http.MethodGet, "/tender-requests/"+id, nil, nil, &out); err != nil {
		return dto.TenderRequest{}, err
	}
	return out, nil
}

// CreateTender submits a new tender request.
func (c *Client) CreateTender(ctx context.Context, req dto.CreateTenderRequest) (dto.TenderRequest, error) {
	var out dto.TenderRequest
	if err := c.do(ctx, http.MethodPost, "/tender-requests", nil, req, &out); err != nil {
		return dto.TenderRequest{}, err
	}
	return out, nil
}
