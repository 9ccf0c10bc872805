// Package tenders manages departments and tender requests.
package tenders

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domaintender "tenderdesk/internal/domain/tender"
	domainuser "tenderdesk/internal/domain/user"
)

type Service struct {
	Tenders domaintender.Store
	Users   domainuser.Store
	Logger  *slog.Logger

	Now func() time.Time
}

// CreateParams creates a tender request.
type CreateParams struct {
	DepartmentID   string
	CreatedBy      string
	Code           string
	Category       string
	Status         string
	RequiredLevels int
	CurrentLevel   int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domaintender.Request, error) {
	if _, err := s.Tenders.DepartmentByID(ctx, params.DepartmentID); err != nil {
		return nil, domaintender.ErrInvalidDepartment
	}
	if _, err := s.Users.ByID(ctx, params.CreatedBy); err != nil {
		return nil, domaintender.ErrInvalidCreator
	}
	if params.CurrentLevel > params.RequiredLevels {
		return nil, domaintender.ErrLevelOutOfRange
	}
	now := s.now()
	request := &domaintender.Request{
		ID:             uuid.NewString(),
		DepartmentID:   params.DepartmentID,
		CreatedBy:      params.CreatedBy,
		Code:           strings.TrimSpace(params.Code),
		Category:       params.Category,
		Status:         params.Status,
		RequiredLevels: params.RequiredLevels,
		CurrentLevel:   params.CurrentLevel,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	if err := s.Tenders.Insert(ctx, request); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("tender request created", "tender_id", request.ID, "department_id", request.DepartmentID)
	}
	return request, nil
}

func (s *Service) Update(ctx context.Context, id string, patch domaintender.Patch) (*domaintender.Request, error) {
	request, err := s.Tenders.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.DepartmentID != nil {
		if _, err := s.Tenders.DepartmentByID(ctx, *patch.DepartmentID); err != nil {
			return nil, domaintender.ErrInvalidDepartment
		}
		request.DepartmentID = *patch.DepartmentID
	}
	if patch.Code != nil {
		request.Code = *patch.Code
	}
	if patch.Category != nil {
		request.Category = *patch.Category
	}
	if patch.Status != nil {
		request.Status = *patch.Status
	}
	if patch.RequiredLevels != nil {
		request.RequiredLevels = *patch.RequiredLevels
	}
	if patch.CurrentLevel != nil {
		request.CurrentLevel = *patch.CurrentLevel
	}
	if request.CurrentLevel > request.RequiredLevels {
		return nil, domaintender.ErrLevelOutOfRange
	}
	request.ModifiedAt = s.now()
	if err := s.Tenders.Update(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Tenders.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*domaintender.Request, error) {
	return s.Tenders.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter domaintender.Filter) ([]domaintender.Request, error) {
	return s.Tenders.List(ctx, filter)
}

func (s *Service) ListDepartments(ctx context.Context) ([]domaintender.Department, error) {
	return s.Tenders.Departments(ctx)
}

func (s *Service) GetDepartment(ctx context.Context, id string) (*domaintender.Department, error) {
	return s.Tenders.DepartmentByID(ctx, id)
}

func (s *Service) CreateDepartment(ctx context.Context, name string) (*domaintender.Department, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, errors.New("tenders: department name too short")
	}
	department := &domaintender.Department{ID: uuid.NewString(), Name: name}
	if err := s.Tenders.InsertDepartment(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, id, name string) (*domaintender.Department, error) {
	department, err := s.Tenders.DepartmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	department.Name = strings.TrimSpace(name)
	if err := s.Tenders.UpdateDepartment(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

// DeleteDepartment refuses while any role still references the department.
func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	roles, err := s.Users.Roles(ctx)
	if err != nil {
		return err
	}
	for _, role := range roles {
		for _, allowed := range role.AllowedDepartmentIDs {
			if allowed == id {
				return domaintender.ErrDepartmentInUse
			}
		}
	}
	return s.Tenders.DeleteDepartment(ctx, id)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
