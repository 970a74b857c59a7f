package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// StaticProvider resolves tokens from a fixed in-memory table. It backs
// local development and tests where the auth platform is unavailable.
type StaticProvider struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewStaticProvider creates a provider with the given token to user table.
func NewStaticProvider(users map[string]domain.User) *StaticProvider {
	table := make(map[string]domain.User, len(users))
	for token, user := range users {
		table[token] = user
	}
	return &StaticProvider{users: table}
}

func (p *StaticProvider) UserFromToken(_ context.Context, token string) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	user, ok := p.users[token]
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, nil
}

// Signup registers the user and makes their email usable as a token.
func (p *StaticProvider) Signup(_ context.Context, email, _, name, role string) (domain.User, error) {
	if role == "" {
		role = domain.RoleCustomer
	}

	user := domain.User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  name,
		Role:  role,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[email] = user

	return user, nil
}

var _ domain.AuthProvider = (*StaticProvider)(nil)
