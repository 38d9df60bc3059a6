package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/serenespa/admin-console/internal/catalog"
)

// MemoryRepo keeps services in process; used when MongoDB is not configured
// and in tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	store   map[int64]*catalog.Service
	nextSID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]*catalog.Service), nextSID: 1}
}

func (m *MemoryRepo) Create(ctx context.Context, s *catalog.Service) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.SID = m.nextSID
	m.nextSID++
	if cp.Media == nil {
		cp.Media = []catalog.Media{}
	}
	m.store[cp.SID] = &cp
	s.SID = cp.SID
	return cp.SID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, sid int64) (*catalog.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.store[sid]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, catalog.ErrNotFound
}

func (m *MemoryRepo) List(ctx context.Context, active bool) ([]catalog.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]catalog.Service, 0, len(m.store))
	for _, s := range m.store {
		if s.Active == active {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SID < out[j].SID })
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, sid int64, u catalog.ServiceUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[sid]
	if !ok {
		return catalog.ErrNotFound
	}
	s.Name = u.Name
	s.Duration = u.Duration
	s.Description = u.Description
	s.AID = u.AID
	s.Media = mediaFromURLs(u.Media)
	return nil
}

func (m *MemoryRepo) SetActive(ctx context.Context, sid int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[sid]
	if !ok {
		return catalog.ErrNotFound
	}
	s.Active = active
	return nil
}
