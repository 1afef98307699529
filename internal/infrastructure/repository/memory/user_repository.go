package memory

import (
	"context"
	"sync"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/oklog/ulid/v2"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[ulid.ULID]*domain.User
	byEmail map[string]ulid.ULID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[ulid.ULID]*domain.User),
		byEmail: make(map[string]ulid.ULID),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return domain.ErrEmailAlreadyRegistered
	}
	u := *user
	r.byID[u.ID] = &u
	r.byEmail[email] = u.ID
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[domain.NormalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[domain.NormalizeEmail(email)]
	return ok, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID ulid.ULID, hashedPassword string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Password = hashedPassword
	u.UpdatedAt = at
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FullName = user.FullName
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	u.UpdatedAt = user.UpdatedAt
	return nil
}

// Count returns the number of stored users.
func (r *UserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
