// Package memstore provides in-memory stand-ins for the Postgres repository,
// the Redis list cache and the password hasher, for use in tests.
package memstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cardiopredict/cardiopredict/internal/cache"
	"github.com/cardiopredict/cardiopredict/internal/model"
	"github.com/cardiopredict/cardiopredict/internal/repository"
)

// Store is an in-memory user and prediction store with the same
// owner-scoping semantics as the Postgres repository.
type Store struct {
	mu          sync.Mutex
	users       map[int64]*model.User
	predictions map[int64]*model.Prediction
	nextUser    int64
	nextPred    int64

	// FailCreate, when set, is returned by CreatePrediction.
	FailCreate error
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:       make(map[int64]*model.User),
		predictions: make(map[int64]*model.Prediction),
	}
}

func (m *Store) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	m.nextUser++
	user.ID = m.nextUser
	user.CreatedAt = time.Now().UTC()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *Store) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *Store) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return m.findUser(func(u *model.User) bool { return u.Username == username })
}

func (m *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return m.findUser(func(u *model.User) bool { return u.Email == email })
}

func (m *Store) findUser(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *Store) UpdateUserProfile(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	u.PhoneNumber = user.PhoneNumber
	return nil
}

func (m *Store) UpdateUserPassword(_ context.Context, id int64, hashedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (m *Store) CreatePrediction(_ context.Context, p *model.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		return m.FailCreate
	}
	m.nextPred++
	p.ID = m.nextPred
	p.CreatedAt = time.Now().UTC()
	stored := *p
	m.predictions[p.ID] = &stored
	return nil
}

func (m *Store) ListPredictions(_ context.Context, ownerID int64) ([]*model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Prediction, 0)
	for id := int64(1); id <= m.nextPred; id++ {
		if p, ok := m.predictions[id]; ok && p.OwnerID == ownerID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *Store) GetPrediction(_ context.Context, o repository.Owned) (*model.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[o.ID]
	if !ok || p.OwnerID != o.OwnerID {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *Store) DeletePrediction(_ context.Context, o repository.Owned) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[o.ID]
	if !ok || p.OwnerID != o.OwnerID {
		return repository.ErrNotFound
	}
	delete(m.predictions, o.ID)
	return nil
}

// PredictionCount returns the number of stored predictions.
func (m *Store) PredictionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.predictions)
}

// Cache is an in-memory prediction list cache.
type Cache struct {
	mu          sync.Mutex
	lists       map[int64][]*model.Prediction
	generations map[int64]int64
	invalidated int

	// FailGet, when set, is returned by every GetPredictionList call.
	FailGet error
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		lists:       make(map[int64][]*model.Prediction),
		generations: make(map[int64]int64),
	}
}

func (c *Cache) GetPredictionList(_ context.Context, ownerID int64) ([]*model.Prediction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailGet != nil {
		return nil, c.FailGet
	}
	list, ok := c.lists[ownerID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return list, nil
}

func (c *Cache) PredictionListGeneration(_ context.Context, ownerID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[ownerID], nil
}

func (c *Cache) SetPredictionList(_ context.Context, ownerID, generation int64, predictions []*model.Prediction) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[ownerID] != generation {
		return false, nil
	}
	c.lists[ownerID] = predictions
	return true, nil
}

func (c *Cache) InvalidatePredictionList(_ context.Context, ownerID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, ownerID)
	c.generations[ownerID]++
	c.invalidated++
	return nil
}

// PlainHasher stores passwords with a marker prefix.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) {
	return "plain$" + password, nil
}

func (PlainHasher) Verify(password, encodedHash string) (bool, error) {
	stored, ok := strings.CutPrefix(encodedHash, "plain$")
	if !ok {
		return false, errors.New("unknown hash format")
	}
	return stored == password, nil
}

// Invalidated returns how many invalidations have been applied.
func (c *Cache) Invalidated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

// SetActive flips the active flag of a stored user.
func (m *Store) SetActive(id int64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.IsActive = active
	}
}
