package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/mkrylov/accountd/internal/model"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
	"github.com/mkrylov/accountd/internal/pkg/timeutil"
)

const tokenName = "auth-token"

// TokenService issues opaque bearer tokens of the form "<id>|<secret>". The
// store keeps only the sha256 of the secret, so a stored token cannot be
// replayed from a database dump.
type TokenService struct {
	tokens TokenStore
	users  UserStore
}

func NewTokenService(tokens TokenStore, users UserStore) *TokenService {
	return &TokenService{tokens: tokens, users: users}
}

func (s *TokenService) Issue(ctx context.Context, user *model.User) (string, error) {
	secret := newTokenSecret()
	token := &model.AccessToken{
		ID:        newID(),
		UserID:    user.ID,
		Name:      tokenName,
		TokenHash: hashSecret(secret),
		Ctime:     timeutil.NowUnix(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return token.ID + "|" + secret, nil
}

// Authenticate resolves a plaintext bearer token to its account.
func (s *TokenService) Authenticate(ctx context.Context, plaintext string) (*model.User, error) {
	id, secret, found := strings.Cut(plaintext, "|")
	if !found || id == "" || secret == "" {
		return nil, appErr.ErrUnauthorized
	}
	token, err := s.tokens.GetByID(ctx, id)
	if err != nil {
		return nil, appErr.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(hashSecret(secret))) != 1 {
		return nil, appErr.ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, appErr.ErrUnauthorized
	}
	_ = s.tokens.Touch(ctx, token.ID, timeutil.NowUnix())
	return user, nil
}

func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	return s.tokens.DeleteByUser(ctx, userID)
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
