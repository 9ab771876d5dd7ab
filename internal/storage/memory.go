package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"kharacha/internal/core"
)

// MemoryStore is an in-process implementation of ExpenseStore and UserStore.
// It backs tests and the dependency-free dev backend.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	expenses map[string]core.Expense
	versions map[string]int64
	users    map[string]core.User

	// now is swappable so tests can control creation times.
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		expenses: make(map[string]core.Expense),
		versions: make(map[string]int64),
		users:    make(map[string]core.User),
		now:      time.Now,
	}
}

var (
	_ ExpenseStore = (*MemoryStore)(nil)
	_ UserStore    = (*MemoryStore)(nil)
)

func (s *MemoryStore) InsertExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = strconv.FormatInt(s.nextID, 10)
	s.nextID++
	e.CreatedAt = s.now().UTC()
	s.expenses[e.ID] = e
	s.versions[e.ID] = 1
	return e, nil
}

func (s *MemoryStore) FindExpenseByID(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	return e, nil
}

func (s *MemoryStore) FindExpensesByOwner(_ context.Context, owner string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.Owner == owner {
			out = append(out, e)
		}
	}
	// Newest first; ID breaks ties for records created in the same instant.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return idNum(out[i].ID) > idNum(out[j].ID)
	})
	return out, nil
}

func (s *MemoryStore) UpdateExpenseByID(_ context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	patch.Apply(&e)
	s.expenses[id] = e
	s.versions[id]++
	return e, nil
}

func (s *MemoryStore) DeleteExpenseByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	delete(s.expenses, id)
	delete(s.versions, id)
	return nil
}

// ExpenseVersion mirrors the SQLite version counter for parity with the
// production backend.
func (s *MemoryStore) ExpenseVersion(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.versions[id]
	if !ok {
		return 0, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	return v, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return core.User{}, fmt.Errorf("%w: username already taken", core.ErrValidation)
	}
	u := core.User{
		ID:           strconv.FormatInt(s.nextID, 10),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	s.nextID++
	s.users[username] = u
	return u, nil
}

func (s *MemoryStore) FindUserByName(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return core.User{}, fmt.Errorf("%w: user %s", core.ErrNotFound, username)
	}
	return u, nil
}

func idNum(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}
