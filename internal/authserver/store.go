package authserver

import (
	"context"
	"strings"
	"sync"
	"time"

	"ecoshop/internal/models"
	"ecoshop/internal/repo"
)

// UserStore persists accounts. *repo.UserRepo implements it on Postgres.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.Account) error
	UserByEmail(ctx context.Context, email string) (*models.Account, error)
	UserByID(ctx context.Context, id int64) (*models.Account, error)
	ConfirmEmail(ctx context.Context, token string) (*models.Account, error)
}

var _ UserStore = (*repo.UserRepo)(nil)

// MemoryStore is a UserStore for local development without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*models.Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*models.Account)}
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return repo.ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.Email = email
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MemoryStore) UserByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (m *MemoryStore) UserByID(_ context.Context, id int64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) ConfirmEmail(_ context.Context, token string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if token != "" && u.ConfirmToken == token {
			u.EmailVerified = true
			u.ConfirmToken = ""
			out := *u
			return &out, nil
		}
	}
	return nil, repo.ErrUserNotFound
}
