package account

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository,
// used in tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	links    map[string][]*OAuthLink // keyed by user ID
}

// NewInMemoryRepository creates a new in-memory account repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[string]*Account),
		links:    make(map[string][]*OAuthLink),
	}
}

// GetByID retrieves an account by ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *acct
	return &cp, nil
}

// GetByEmail retrieves an account by its unique email.
func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Email == email {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// GetByUsername retrieves an account by its unique username.
func (r *InMemoryRepository) GetByUsername(_ context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, acct := range r.accounts {
		if acct.Username == username {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// Create creates a new account.
func (r *InMemoryRepository) Create(_ context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Email == acct.Email {
			return ErrEmailTaken
		}
		if existing.Username == acct.Username {
			return ErrUsernameTaken
		}
	}

	cp := *acct
	r.accounts[acct.ID] = &cp
	return nil
}

// Update replaces an existing account's mutable fields.
func (r *InMemoryRepository) Update(_ context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[acct.ID]; !ok {
		return ErrNotFound
	}

	for id, existing := range r.accounts {
		if id == acct.ID {
			continue
		}
		if existing.Email == acct.Email {
			return ErrEmailTaken
		}
		if existing.Username == acct.Username {
			return ErrUsernameTaken
		}
	}

	cp := *acct
	r.accounts[acct.ID] = &cp
	return nil
}

// Delete physically removes the account row.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

// ListOAuthLinks returns the account's identity-provider links.
func (r *InMemoryRepository) ListOAuthLinks(_ context.Context, userID string) ([]*OAuthLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]*OAuthLink, 0, len(r.links[userID]))
	for _, l := range r.links[userID] {
		cp := *l
		links = append(links, &cp)
	}
	return links, nil
}

// AddOAuthLink attaches an identity-provider link to an account.
func (r *InMemoryRepository) AddOAuthLink(_ context.Context, link *OAuthLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *link
	r.links[link.UserID] = append(r.links[link.UserID], &cp)
	return nil
}

// DeleteOAuthLinks removes all identity-provider links for a user.
func (r *InMemoryRepository) DeleteOAuthLinks(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.links, userID)
	return nil
}
