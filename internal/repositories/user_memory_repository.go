package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tracker/internal/common"
	"tracker/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
// It enforces the same email and token uniqueness as the SQL schema.
type MemoryUserRepository struct {
	users   map[string]models.User
	byEmail map[string]string
	byToken map[string]string
	mu      sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
	}
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return common.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.HasToken() {
		if _, taken := r.byToken[*user.APIToken]; taken {
			return fmt.Errorf("token collision for user %s", user.ID)
		}
		r.byToken[*user.APIToken] = user.ID
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = copyUser(*user)
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByID returns a user by its ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.get(id)
}

// GetByToken returns the user holding token.
func (r *MemoryUserRepository) GetByToken(_ context.Context, token string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok || token == "" {
		return nil, common.ErrNotFound
	}
	return r.get(id)
}

// SetToken replaces the user's token, dropping the old index entry.
func (r *MemoryUserRepository) SetToken(_ context.Context, userID string, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return common.ErrNotFound
	}
	if token != nil {
		if owner, taken := r.byToken[*token]; taken && owner != userID {
			return fmt.Errorf("token collision for user %s", userID)
		}
	}
	if user.HasToken() {
		delete(r.byToken, *user.APIToken)
	}
	if token != nil {
		t := *token
		user.APIToken = &t
		r.byToken[t] = userID
	} else {
		user.APIToken = nil
	}
	user.UpdatedAt = time.Now()
	r.users[userID] = user
	return nil
}

func (r *MemoryUserRepository) get(id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := copyUser(user)
	return &u, nil
}

// copyUser detaches the token pointer so callers cannot mutate stored state.
func copyUser(u models.User) models.User {
	if u.APIToken != nil {
		t := *u.APIToken
		u.APIToken = &t
	}
	return u
}
