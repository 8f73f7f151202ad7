package remote

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/weekly/internal/schedule"
)

// Op names a Backend operation, used by hooks and logs.
type Op string

const (
	OpList         Op = "list"
	OpGet          Op = "get"
	OpGetPublic    Op = "getPublic"
	OpCreate       Op = "create"
	OpUpdate       Op = "update"
	OpDelete       Op = "delete"
	OpTogglePublic Op = "togglePublic"
)

// Hook runs before every operation. A non-nil error fails the call without
// touching state. Hooks may block to simulate latency.
type Hook func(ctx context.Context, op Op, arg string) error

// Memory is an in-process remote store shared by any number of owners.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
	hook    Hook
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record), now: time.Now}
}

// SetHook installs h; nil removes it.
func (m *Memory) SetHook(h Hook) {
	m.mu.Lock()
	m.hook = h
	m.mu.Unlock()
}

// Records returns a copy of every record owned by owner, oldest first.
func (m *Memory) Records(owner string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.OwnerID == owner {
			out = append(out, cloneRecord(r))
		}
	}
	sortRecords(out)
	return out
}

// Session returns a Backend acting as owner. An empty owner is rejected on
// every owner-scoped call.
func (m *Memory) Session(owner string) Backend {
	return &memorySession{m: m, owner: owner}
}

func (m *Memory) before(ctx context.Context, op Op, arg string) error {
	m.mu.Lock()
	h := m.hook
	m.mu.Unlock()
	if h != nil {
		if err := h(ctx, op, arg); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// owned loads id and checks ownership. Callers hold m.mu.
func (m *Memory) owned(owner, id string) (Record, error) {
	r, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if r.OwnerID != owner {
		return Record{}, ErrForbidden
	}
	return r, nil
}

type memorySession struct {
	m     *Memory
	owner string
}

func (s *memorySession) auth(ctx context.Context, op Op, arg string) error {
	if s.owner == "" {
		return ErrUnauthenticated
	}
	return s.m.before(ctx, op, arg)
}

func (s *memorySession) List(ctx context.Context) ([]Meta, error) {
	if err := s.auth(ctx, OpList, ""); err != nil {
		return nil, err
	}
	recs := s.m.Records(s.owner)
	metas := make([]Meta, len(recs))
	for i, r := range recs {
		metas[i] = r.Meta()
	}
	return metas, nil
}

func (s *memorySession) Get(ctx context.Context, id string) (Record, error) {
	if err := s.auth(ctx, OpGet, id); err != nil {
		return Record{}, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, err := s.m.owned(s.owner, id)
	if err != nil {
		return Record{}, err
	}
	return cloneRecord(r), nil
}

func (s *memorySession) GetPublic(ctx context.Context, token string) (Record, error) {
	if err := s.m.before(ctx, OpGetPublic, token); err != nil {
		return Record{}, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, r := range s.m.records {
		if r.IsPublic && r.ShareToken != "" && r.ShareToken == token {
			out := cloneRecord(r)
			out.OwnerID = ""
			return out, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *memorySession) Create(ctx context.Context, name string) (string, error) {
	if err := schedule.ValidateName(name); err != nil {
		return "", err
	}
	if err := s.auth(ctx, OpCreate, name); err != nil {
		return "", err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := s.m.now().UnixMilli()
	r := Record{
		ID:        uuid.NewString(),
		OwnerID:   s.owner,
		Name:      strings.TrimSpace(name),
		Tasks:     []schedule.Task{},
		Settings:  schedule.DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.m.records[r.ID] = r
	return r.ID, nil
}

func (s *memorySession) Update(ctx context.Context, id string, p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.auth(ctx, OpUpdate, id); err != nil {
		return err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, err := s.m.owned(s.owner, id)
	if err != nil {
		return err
	}
	r = p.Apply(r)
	r.UpdatedAt = s.m.now().UnixMilli()
	s.m.records[id] = r
	return nil
}

func (s *memorySession) Delete(ctx context.Context, id string) error {
	if err := s.auth(ctx, OpDelete, id); err != nil {
		return err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	_, err := s.m.owned(s.owner, id)
	switch err {
	case ErrNotFound:
		return nil
	case nil:
		delete(s.m.records, id)
		return nil
	default:
		return err
	}
}

func (s *memorySession) TogglePublic(ctx context.Context, id string) (string, error) {
	if err := s.auth(ctx, OpTogglePublic, id); err != nil {
		return "", err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, err := s.m.owned(s.owner, id)
	if err != nil {
		return "", err
	}
	if r.IsPublic {
		r.IsPublic = false
		r.ShareToken = ""
	} else {
		r.IsPublic = true
		r.ShareToken = uuid.NewString()
	}
	r.UpdatedAt = s.m.now().UnixMilli()
	s.m.records[id] = r
	return r.ShareToken, nil
}

func cloneRecord(r Record) Record {
	tasks := make([]schedule.Task, len(r.Tasks))
	for i, t := range r.Tasks {
		tasks[i] = t.Clone()
	}
	r.Tasks = tasks
	return r
}

func sortRecords(rs []Record) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt != rs[j].CreatedAt {
			return rs[i].CreatedAt < rs[j].CreatedAt
		}
		return rs[i].ID < rs[j].ID
	})
}
