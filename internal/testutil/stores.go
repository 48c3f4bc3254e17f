// Package testutil provides in-memory store and notifier implementations for
// exercising the lifecycle services without postgres or SMTP.
package testutil

import (
	"context"
	"sync"

	"github.com/mkrylov/accountd/internal/model"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
)

type MemUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User

	// MarkVerifiedErr, when set, is returned by MarkVerified to simulate a
	// storage failure.
	MarkVerifiedErr error
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: map[string]*model.User{}}
}

func (s *MemUserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return appErr.ErrConflict
		}
	}
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *MemUserStore) GetByID(ctx context.Context, userID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemUserStore) MarkVerified(ctx context.Context, userID string, verifiedAt, mtime int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkVerifiedErr != nil {
		return false, s.MarkVerifiedErr
	}
	user, ok := s.users[userID]
	if !ok || user.EmailVerifiedAt != nil {
		return false, nil
	}
	ts := verifiedAt
	user.EmailVerifiedAt = &ts
	user.Mtime = mtime
	return true, nil
}

func (s *MemUserStore) UpdatePassword(ctx context.Context, userID, passwordHash, rememberToken string, mtime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return appErr.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.RememberToken = rememberToken
	user.Mtime = mtime
	return nil
}

type MemTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.AccessToken
}

func NewMemTokenStore() *MemTokenStore {
	return &MemTokenStore{tokens: map[string]*model.AccessToken{}}
}

func (s *MemTokenStore) Create(ctx context.Context, token *model.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.ID]; ok {
		return appErr.ErrConflict
	}
	clone := *token
	s.tokens[token.ID] = &clone
	return nil
}

func (s *MemTokenStore) GetByID(ctx context.Context, tokenID string) (*model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[tokenID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *token
	return &clone, nil
}

func (s *MemTokenStore) Touch(ctx context.Context, tokenID string, lastUsedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.tokens[tokenID]; ok {
		ts := lastUsedAt
		token.LastUsedAt = &ts
	}
	return nil
}

func (s *MemTokenStore) DeleteByUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *MemTokenStore) CountByUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, token := range s.tokens {
		if token.UserID == userID {
			count++
		}
	}
	return count
}

type MemResetStore struct {
	mu   sync.Mutex
	rows map[string]*model.PasswordReset
}

func NewMemResetStore() *MemResetStore {
	return &MemResetStore{rows: map[string]*model.PasswordReset{}}
}

func (s *MemResetStore) Replace(ctx context.Context, reset *model.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *reset
	s.rows[reset.Email] = &clone
	return nil
}

func (s *MemResetStore) GetByEmail(ctx context.Context, email string) (*model.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (s *MemResetStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, email)
	return nil
}

func (s *MemResetStore) DeleteCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for email, row := range s.rows {
		if row.Ctime < cutoff {
			delete(s.rows, email)
			deleted++
		}
	}
	return deleted, nil
}

// Backdate rewrites the creation time of the live request for an email, so
// tests can step over throttle windows and TTLs.
func (s *MemResetStore) Backdate(email string, ctime int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[email]; ok {
		row.Ctime = ctime
	}
}

func (s *MemResetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
