package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainuser "tenderdesk/internal/domain/user"
)

// UserStore keeps users and roles in memory. Not suitable for production.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*domainuser.User
	order []string
	roles map[string]*domainuser.Role
}

func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[string]*domainuser.User),
		roles: make(map[string]*domainuser.Role),
	}
}

func (s *UserStore) Insert(ctx context.Context, u *domainuser.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Mail, u.Mail) {
			return domainuser.ErrMailTaken
		}
	}
	clone := *u
	s.users[u.ID] = &clone
	s.order = append(s.order, u.ID)
	return nil
}

func (s *UserStore) Update(ctx context.Context, u *domainuser.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return domainuser.ErrNotFound
	}
	for id, existing := range s.users {
		if id != u.ID && strings.EqualFold(existing.Mail, u.Mail) {
			return domainuser.ErrMailTaken
		}
	}
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domainuser.ErrNotFound
	}
	delete(s.users, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *UserStore) ByID(ctx context.Context, id string) (*domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, domainuser.ErrNotFound
}

func (s *UserStore) ByMail(ctx context.Context, mail string) (*domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Mail, mail) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (s *UserStore) ByUserName(ctx context.Context, name string) (*domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.UserName == name {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (s *UserStore) List(ctx context.Context, roleID string) ([]domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domainuser.User, 0, len(s.order))
	// Newest first, matching the Mongo store's _id descending sort.
	for i := len(s.order) - 1; i >= 0; i-- {
		u := s.users[s.order[i]]
		if roleID != "" && u.RoleID != roleID {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *UserStore) ByRoleKey(ctx context.Context, key, q string) ([]domainuser.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var role *domainuser.Role
	for _, r := range s.roles {
		if r.Key == key {
			role = r
			break
		}
	}
	if role == nil {
		return nil, domainuser.ErrRoleNotFound
	}
	needle := strings.ToLower(q)
	var out []domainuser.User
	for _, id := range s.order {
		u := s.users[id]
		if u.RoleID != role.ID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.UserName), needle) &&
			!strings.Contains(strings.ToLower(u.Mail), needle) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out, nil
}

func (s *UserStore) InsertRole(ctx context.Context, r *domainuser.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *r
	clone.AllowedDepartmentIDs = append([]string(nil), r.AllowedDepartmentIDs...)
	s.roles[r.ID] = &clone
	return nil
}

func (s *UserStore) UpdateRole(ctx context.Context, r *domainuser.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID]; !ok {
		return domainuser.ErrRoleNotFound
	}
	clone := *r
	clone.AllowedDepartmentIDs = append([]string(nil), r.AllowedDepartmentIDs...)
	s.roles[r.ID] = &clone
	return nil
}

func (s *UserStore) DeleteRole(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[id]; !ok {
		return domainuser.ErrRoleNotFound
	}
	delete(s.roles, id)
	return nil
}

func (s *UserStore) RoleByID(ctx context.Context, id string) (*domainuser.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.roles[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, domainuser.ErrRoleNotFound
}

func (s *UserStore) RoleByKey(ctx context.Context, key string) (*domainuser.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.Key == key {
			clone := *r
			return &clone, nil
		}
	}
	return nil, domainuser.ErrRoleNotFound
}

func (s *UserStore) Roles(ctx context.Context) ([]domainuser.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domainuser.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var _ domainuser.Store = (*UserStore)(nil)
