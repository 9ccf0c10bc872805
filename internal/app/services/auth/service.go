package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainuser "tenderdesk/internal/domain/user"
)

var ErrInvalidCredentials = errors.New("auth: invalid credentials")

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service authenticates accounts. The identifier is a mail when it contains
// '@', a userName otherwise.
type Service struct {
	Users     domainuser.Store
	Passwords PasswordHasher
	Tokens    TokenGenerator
	Logger    *slog.Logger
}

// LoginResult is a verified account plus its resolved role and a fresh
// bearer token.
type LoginResult struct {
	User  *domainuser.User
	Role  *domainuser.Role
	Token string
}

func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		account *domainuser.User
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.Users.ByMail(ctx, strings.ToLower(identifier))
	} else {
		account, err = s.Users.ByUserName(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(account.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	var role *domainuser.Role
	if account.RoleID != "" {
		if resolved, err := s.Users.RoleByID(ctx, account.RoleID); err == nil {
			role = resolved
		}
	}
	token, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", account.ID)
	}
	return &LoginResult{User: account, Role: role, Token: token}, nil
}
