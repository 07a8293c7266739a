package repository

import (
	"errors"
	"strings"

	"github.com/spec-kit/user-scoring-service/internal/domain"
)

// ErrUserNotFound is returned by lookups for usernames the registry has
// never seen.
var ErrUserNotFound = errors.New("user not found")

// UserRegistry is the in-memory store behind the rule engine. It preserves
// insertion order and does no locking of its own; callers that share a
// registry across goroutines serialize access at their boundary.
type UserRegistry interface {
	Add(user *domain.User)
	GetByUsername(username string) (*domain.User, error)
	UsernameExists(username string) bool
	EmailExists(email string) bool
	List() []*domain.User
	Count() int
	Clear()
}

type userRegistry struct {
	users []*domain.User
}

// NewUserRegistry returns an empty registry.
func NewUserRegistry() UserRegistry {
	return &userRegistry{}
}

func (r *userRegistry) Add(user *domain.User) {
	r.users = append(r.users, user)
}

// GetByUsername matches the username exactly, unlike the existence checks.
func (r *userRegistry) GetByUsername(username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *userRegistry) UsernameExists(username string) bool {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func (r *userRegistry) EmailExists(email string) bool {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// List returns a fresh slice sharing the stored records, in insertion order.
func (r *userRegistry) List() []*domain.User {
	out := make([]*domain.User, len(r.users))
	copy(out, r.users)
	return out
}

func (r *userRegistry) Count() int {
	return len(r.users)
}

func (r *userRegistry) Clear() {
	r.users = nil
}
