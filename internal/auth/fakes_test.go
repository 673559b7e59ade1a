package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Spok95/school-words/internal/config"
	"github.com/Spok95/school-words/internal/db"
	"github.com/Spok95/school-words/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[string]*models.User
	sessions map[string]models.Session
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}, sessions: map[string]models.Session{}}
}

func (m *memStore) UsernameExists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[username]
	return ok, nil
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return db.ErrUsernameTaken
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *memStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memStore) SetUserActive(_ context.Context, username string, active bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, db.ErrNotFound
	}
	u.IsActive = active
	cp := *u
	return &cp, nil
}

func (m *memStore) ListUsers(_ context.Context, pendingOnly bool) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if pendingOnly && u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *memStore) CreateSession(_ context.Context, sess models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memStore) DeleteExpiredSessions(_ context.Context, userID int64, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.UserID == userID && s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingNotifier) NotifySignup(_ context.Context, u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u.Username)
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:  "test-secret",
		SessionTTL: time.Hour,
		GuestCode:  "GUEST-2024",
		AdminKey:   "admin-key",
	}
}

func newTestService(cfg *config.Config) (*Service, *memStore, *recordingNotifier) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	svc := NewService(store, store, notifier, cfg, nil)
	svc.cost = bcrypt.MinCost
	return svc, store, notifier
}
