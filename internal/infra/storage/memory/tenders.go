package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domaintender "tenderdesk/internal/domain/tender"
)

// TenderStore keeps departments and tender requests in memory.
type TenderStore struct {
	mu          sync.RWMutex
	departments map[string]*domaintender.Department
	requests    map[string]*domaintender.Request
	order       []string
}

func NewTenderStore() *TenderStore {
	return &TenderStore{
		departments: make(map[string]*domaintender.Department),
		requests:    make(map[string]*domaintender.Request),
	}
}

func (s *TenderStore) InsertDepartment(ctx context.Context, d *domaintender.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.departments {
		if strings.EqualFold(existing.Name, d.Name) {
			return domaintender.ErrDuplicateName
		}
	}
	clone := *d
	s.departments[d.ID] = &clone
	return nil
}

func (s *TenderStore) UpdateDepartment(ctx context.Context, d *domaintender.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[d.ID]; !ok {
		return domaintender.ErrDepartmentMissing
	}
	for id, existing := range s.departments {
		if id != d.ID && strings.EqualFold(existing.Name, d.Name) {
			return domaintender.ErrDuplicateName
		}
	}
	clone := *d
	s.departments[d.ID] = &clone
	return nil
}

func (s *TenderStore) DeleteDepartment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.departments[id]; !ok {
		return domaintender.ErrDepartmentMissing
	}
	delete(s.departments, id)
	return nil
}

func (s *TenderStore) DepartmentByID(ctx context.Context, id string) (*domaintender.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.departments[id]; ok {
		clone := *d
		return &clone, nil
	}
	return nil, domaintender.ErrDepartmentMissing
}

func (s *TenderStore) Departments(ctx context.Context) ([]domaintender.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domaintender.Department, 0, len(s.departments))
	for _, d := range s.departments {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *TenderStore) Insert(ctx context.Context, r *domaintender.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *r
	s.requests[r.ID] = &clone
	s.order = append(s.order, r.ID)
	return nil
}

func (s *TenderStore) Update(ctx context.Context, r *domaintender.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; !ok {
		return domaintender.ErrNotFound
	}
	clone := *r
	s.requests[r.ID] = &clone
	return nil
}

func (s *TenderStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return domaintender.ErrNotFound
	}
	delete(s.requests, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *TenderStore) ByID(ctx context.Context, id string) (*domaintender.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.requests[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, domaintender.ErrNotFound
}

func (s *TenderStore) List(ctx context.Context, f domaintender.Filter) ([]domaintender.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domaintender.Request
	// Newest first.
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.requests[s.order[i]]
		if f.DepartmentID != "" && r.DepartmentID != f.DepartmentID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

var _ domaintender.Store = (*TenderStore)(nil)
