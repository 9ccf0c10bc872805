package user

import (
	"context"
	"errors"
)

// Well-known role keys seeded at startup.
const (
	RoleAdmin  = "ADMIN"
	RoleBidder = "BIDDER"
	RoleWorker = "WORKER"
)

var (
	ErrNotFound     = errors.New("user: not found")
	ErrRoleNotFound = errors.New("user: role not found")
	ErrMailTaken    = errors.New("user: mail already registered")
	ErrInvalidRole  = errors.New("user: invalid rolId")
	ErrMailRequired = errors.New("user: mail is required")
	ErrNameRequired = errors.New("user: userName is required")
)

// User is an account with exactly one role.
type User struct {
	ID           string
	RoleID       string
	UserName     string
	Mail         string
	PasswordHash string
}

// Role groups permissions under a stable key (ADMIN, BIDDER, WORKER).
type Role struct {
	ID                   string
	Key                  string
	Name                 string
	AllowedDepartmentIDs []string
}

// Store persists users and roles.
type Store interface {
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	ByID(ctx context.Context, id string) (*User, error)
	ByMail(ctx context.Context, mail string) (*User, error)
	ByUserName(ctx context.Context, name string) (*User, error)
	// List returns users, optionally filtered by role id, newest first.
	List(ctx context.Context, roleID string) ([]User, error)
	// ByRoleKey returns users holding the role with the given key whose
	// userName or mail contains q (case-insensitive) when q is non-empty.
	ByRoleKey(ctx context.Context, key, q string) ([]User, error)

	InsertRole(ctx context.Context, r *Role) error
	UpdateRole(ctx context.Context, r *Role) error
	DeleteRole(ctx context.Context, id string) error
	RoleByID(ctx context.Context, id string) (*Role, error)
	RoleByKey(ctx context.Context, key string) (*Role, error)
	Roles(ctx context.Context) ([]Role, error)
}
