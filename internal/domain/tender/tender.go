package tender

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("tender: not found")
	ErrDepartmentMissing = errors.New("tender: department not found")
	ErrDepartmentInUse   = errors.New("tender: department in use by one or more roles")
	ErrDuplicateName     = errors.New("tender: department name already exists")
	ErrInvalidDepartment = errors.New("tender: invalid departmentId")
	ErrInvalidCreator    = errors.New("tender: invalid createdBy")
	ErrLevelOutOfRange   = errors.New("tender: currentLevel cannot be greater than requiredLevels")
)

// Department is an organizational unit tenders belong to.
type Department struct {
	ID   string
	Name string
}

// Request is a tender request moving through review levels.
type Request struct {
	ID             string
	DepartmentID   string
	CreatedBy      string
	Code           string
	Category       string // ELECTRICAL | WATER | INTERNET
	Status         string // DRAFT | OPEN | IN_REVIEW | AWARDED | CANCELLED
	RequiredLevels int
	CurrentLevel   int
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

// Filter narrows a tender listing.
type Filter struct {
	DepartmentID string
	Status       string
	Category     string
}

// Patch carries partial updates; nil fields are left untouched.
type Patch struct {
	DepartmentID   *string
	Code           *string
	Category       *string
	Status         *string
	RequiredLevels *int
	CurrentLevel   *int
}

// Store persists departments and tender requests.
type Store interface {
	InsertDepartment(ctx context.Context, d *Department) error
	UpdateDepartment(ctx context.Context, d *Department) error
	DeleteDepartment(ctx context.Context, id string) error
	DepartmentByID(ctx context.Context, id string) (*Department, error)
	Departments(ctx context.Context) ([]Department, error)

	Insert(ctx context.Context, r *Request) error
	Update(ctx context.Context, r *Request) error
	Delete(ctx context.Context, id string) error
	ByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, f Filter) ([]Request, error)
}
