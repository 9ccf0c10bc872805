// Package seed provisions the base roles, departments and demo accounts so a
// fresh deployment is usable without manual setup. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domaintender "tenderdesk/internal/domain/tender"
	domainuser "tenderdesk/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Seeder struct {
	Users     domainuser.Store
	Tenders   domaintender.Store
	Passwords PasswordHasher
	Logger    *slog.Logger
}

var baseRoles = []struct {
	Key  string
	Name string
}{
	{domainuser.RoleAdmin, "Administrador"},
	{domainuser.RoleBidder, "Licitador"},
	{domainuser.RoleWorker, "Trabajador"},
}

var baseDepartments = []string{"Compras", "Legal", "Operaciones"}

var demoAccounts = []struct {
	RoleKey  string
	UserName string
	Mail     string
	Password string
}{
	{domainuser.RoleAdmin, "admin", "admin@local", "admin1234"},
	{domainuser.RoleBidder, "bidder", "bidder@local", "bidder1234"},
	{domainuser.RoleWorker, "worker1", "worker1@local", "worker1234"},
	{domainuser.RoleWorker, "worker2", "worker2@local", "worker1234"},
}

// Run creates whatever base data is missing.
func (s *Seeder) Run(ctx context.Context, withDemoAccounts bool) error {
	roles := make(map[string]string, len(baseRoles))
	for _, base := range baseRoles {
		role, err := s.Users.RoleByKey(ctx, base.Key)
		if errors.Is(err, domainuser.ErrRoleNotFound) {
			role = &domainuser.Role{ID: uuid.NewString(), Key: base.Key, Name: base.Name}
			if err := s.Users.InsertRole(ctx, role); err != nil {
				return fmt.Errorf("seed: insert role %s: %w", base.Key, err)
			}
		} else if err != nil {
			return fmt.Errorf("seed: lookup role %s: %w", base.Key, err)
		}
		roles[base.Key] = role.ID
	}

	for _, name := range baseDepartments {
		department := &domaintender.Department{ID: uuid.NewString(), Name: name}
		if err := s.Tenders.InsertDepartment(ctx, department); err != nil {
			if errors.Is(err, domaintender.ErrDuplicateName) {
				continue
			}
			return fmt.Errorf("seed: insert department %s: %w", name, err)
		}
	}

	if !withDemoAccounts {
		return nil
	}
	for _, account := range demoAccounts {
		if _, err := s.Users.ByMail(ctx, account.Mail); err == nil {
			continue
		} else if !errors.Is(err, domainuser.ErrNotFound) {
			return fmt.Errorf("seed: lookup user %s: %w", account.Mail, err)
		}
		hash, err := s.Passwords.Hash(account.Password)
		if err != nil {
			return fmt.Errorf("seed: hash password for %s: %w", account.Mail, err)
		}
		u := &domainuser.User{
			ID:           uuid.NewString(),
			RoleID:       roles[account.RoleKey],
			UserName:     account.UserName,
			Mail:         account.Mail,
			PasswordHash: hash,
		}
		if err := s.Users.Insert(ctx, u); err != nil {
			return fmt.Errorf("seed: insert user %s: %w", account.Mail, err)
		}
		if s.Logger != nil {
			s.Logger.Info("demo account created", "mail", account.Mail, "role", account.RoleKey)
		}
	}
	return nil
}
