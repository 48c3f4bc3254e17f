package service

import (
	"context"

	"github.com/mkrylov/accountd/internal/model"
)

// Storage capabilities the lifecycle core needs. The repo package satisfies
// them against postgres; tests use in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	MarkVerified(ctx context.Context, userID string, verifiedAt, mtime int64) (bool, error)
	UpdatePassword(ctx context.Context, userID, passwordHash, rememberToken string, mtime int64) error
}

type TokenStore interface {
	Create(ctx context.Context, token *model.AccessToken) error
	GetByID(ctx context.Context, tokenID string) (*model.AccessToken, error)
	Touch(ctx context.Context, tokenID string, lastUsedAt int64) error
	DeleteByUser(ctx context.Context, userID string) error
}

type ResetStore interface {
	Replace(ctx context.Context, reset *model.PasswordReset) error
	GetByEmail(ctx context.Context, email string) (*model.PasswordReset, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteCreatedBefore(ctx context.Context, cutoff int64) (int64, error)
}
