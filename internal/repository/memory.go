package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"simple-todo/internal/models"
)

// MemoryStore keeps users and tasks in process memory. It backs tests and
// STORE_DRIVER=memory.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]models.User
	usersByName map[string]string
	tasks       map[string]models.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]models.User),
		usersByName: make(map[string]string),
		tasks:       make(map[string]models.Task),
	}
}

// Users returns the UserStore view of s.
func (s *MemoryStore) Users() UserStore { return memoryUsers{s} }

// Tasks returns the TaskStore view of s.
func (s *MemoryStore) Tasks() TaskStore { return memoryTasks{s} }

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.usersByName[u.Username]; ok {
		return models.User{}, ErrDuplicate
	}
	u.ID = uuid.NewString()
	m.s.users[u.ID] = u
	m.s.usersByName[u.Username] = u.ID
	return u, nil
}

func (m memoryUsers) FindByUsername(_ context.Context, username string) (models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	id, ok := m.s.usersByName[username]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return m.s.users[id], nil
}

func (m memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	u, ok := m.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

type memoryTasks struct{ s *MemoryStore }

func (m memoryTasks) ListByOwner(_ context.Context, ownerID string) ([]models.Task, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	tasks := []models.Task{}
	for _, t := range m.s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (m memoryTasks) Create(_ context.Context, t models.Task) (models.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	t.ID = uuid.NewString()
	m.s.tasks[t.ID] = t
	return t, nil
}

func (m memoryTasks) Update(_ context.Context, ownerID, id string, patch models.TaskPatch) (models.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	t, ok := m.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return models.Task{}, ErrNotFound
	}
	patch.Apply(&t)
	m.s.tasks[id] = t
	return t, nil
}

func (m memoryTasks) Delete(_ context.Context, ownerID, id string) (models.Task, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	t, ok := m.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return models.Task{}, ErrNotFound
	}
	delete(m.s.tasks, id)
	return t, nil
}
