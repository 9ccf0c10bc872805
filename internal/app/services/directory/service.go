// Package directory manages the user and role catalog behind the admin
// screens and the worker lookup used by chat assignment.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainuser "tenderdesk/internal/domain/user"
)

var ErrPasswordTooShort = errors.New("directory: password must be at least 6 characters")

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type Service struct {
	Users     domainuser.Store
	Passwords PasswordHasher
	Logger    *slog.Logger
}

// CreateUserParams registers an account with a hashed password.
type CreateUserParams struct {
	RoleID   string
	UserName string
	Mail     string
	Password string
}

// UpdateUserParams patches an account; empty fields are left untouched.
type UpdateUserParams struct {
	RoleID   string
	UserName string
	Mail     string
	Password string
}

func (s *Service) CreateUser(ctx context.Context, params CreateUserParams) (*domainuser.User, error) {
	mail := strings.ToLower(strings.TrimSpace(params.Mail))
	name := strings.TrimSpace(params.UserName)
	if mail == "" {
		return nil, domainuser.ErrMailRequired
	}
	if name == "" {
		return nil, domainuser.ErrNameRequired
	}
	if len(params.Password) < 6 {
		return nil, ErrPasswordTooShort
	}
	if _, err := s.Users.RoleByID(ctx, params.RoleID); err != nil {
		return nil, domainuser.ErrInvalidRole
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	account := &domainuser.User{
		ID:           uuid.NewString(),
		RoleID:       params.RoleID,
		UserName:     name,
		Mail:         mail,
		PasswordHash: hash,
	}
	if err := s.Users.Insert(ctx, account); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user created", "user_id", account.ID, "rol_id", account.RoleID)
	}
	return account, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*domainuser.User, error) {
	account, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.RoleID != "" {
		if _, err := s.Users.RoleByID(ctx, params.RoleID); err != nil {
			return nil, domainuser.ErrInvalidRole
		}
		account.RoleID = params.RoleID
	}
	if name := strings.TrimSpace(params.UserName); name != "" {
		account.UserName = name
	}
	if mail := strings.ToLower(strings.TrimSpace(params.Mail)); mail != "" {
		account.Mail = mail
	}
	if params.Password != "" {
		if len(params.Password) < 6 {
			return nil, ErrPasswordTooShort
		}
		hash, err := s.Passwords.Hash(params.Password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}
	if err := s.Users.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.Users.Delete(ctx, id)
}

func (s *Service) GetUser(ctx context.Context, id string) (*domainuser.User, error) {
	return s.Users.ByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, roleID string) ([]domainuser.User, error) {
	return s.Users.List(ctx, roleID)
}

// UsersByRoleKey backs the worker/bidder pickers in the chat panel.
func (s *Service) UsersByRoleKey(ctx context.Context, key, q string) ([]domainuser.User, error) {
	return s.Users.ByRoleKey(ctx, strings.ToUpper(strings.TrimSpace(key)), strings.TrimSpace(q))
}

func (s *Service) ListRoles(ctx context.Context) ([]domainuser.Role, error) {
	return s.Users.Roles(ctx)
}

func (s *Service) CreateRole(ctx context.Context, key, name string) (*domainuser.Role, error) {
	role := &domainuser.Role{
		ID:   uuid.NewString(),
		Key:  strings.ToUpper(strings.TrimSpace(key)),
		Name: strings.TrimSpace(name),
	}
	if err := s.Users.InsertRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}
