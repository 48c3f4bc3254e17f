package service

import (
	"context"
	"crypto/subtle"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/model"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
	"github.com/mkrylov/accountd/internal/pkg/password"
	"github.com/mkrylov/accountd/internal/pkg/timeutil"
)

// TokenIssuer mints and revokes bearer tokens for an account.
type TokenIssuer interface {
	Issue(ctx context.Context, user *model.User) (string, error)
	RevokeAll(ctx context.Context, userID string) error
}

// Notifier delivers the lifecycle mails.
type Notifier interface {
	SendVerification(ctx context.Context, user *model.User) error
	SendPasswordReset(ctx context.Context, user *model.User, token string) error
}

// AuthService orchestrates the register -> verify -> login -> logout part of
// the credential lifecycle.
type AuthService struct {
	users    UserStore
	issuer   TokenIssuer
	notifier Notifier
	events   EventSink
}

func NewAuthService(users UserStore, issuer TokenIssuer, notifier Notifier, events EventSink) *AuthService {
	return &AuthService{users: users, issuer: issuer, notifier: notifier, events: events}
}

// Register creates an unverified account and triggers the verification mail.
// No token is issued; the account must verify before it can log in. The
// caller reports any failure generically without surfacing the cause.
func (s *AuthService) Register(ctx context.Context, name, email, plainPassword string) error {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:            newID(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		RememberToken: newRememberToken(),
		Ctime:         now,
		Mtime:         now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.events.Dispatch(ctx, Event{Name: EventRegistered, User: user})
	return s.notifier.SendVerification(ctx, user)
}

// VerifyEmail confirms the account the signed link was issued for. The link
// signature and expiry are checked upstream; this validates the binding of
// the embedded hash to the current email value.
func (s *AuthService) VerifyEmail(ctx context.Context, userID, emailHash string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrVerifyNoAccount
		}
		return err
	}
	if user.Verified() {
		return appErr.ErrAlreadyConfirmed
	}
	expected := EmailHash(user.Email)
	if subtle.ConstantTimeCompare([]byte(emailHash), []byte(expected)) != 1 {
		return appErr.ErrInvalidEmailHash
	}
	now := timeutil.NowUnix()
	ok, err := s.users.MarkVerified(ctx, user.ID, now, now)
	if err != nil {
		logutil.GetLogger(ctx).Error("mark verified failed", zap.String("user_id", user.ID), zap.Error(err))
		return appErr.ErrVerifyFailed
	}
	if !ok {
		// Lost a race against a concurrent confirmation.
		return appErr.ErrAlreadyConfirmed
	}
	user.EmailVerifiedAt = &now
	s.events.Dispatch(ctx, Event{Name: EventVerified, User: user})
	return nil
}

// ResendVerification mails a fresh signed link to an unverified account.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrVerifyNoAccount
		}
		return err
	}
	if user.Verified() {
		return appErr.ErrAlreadyConfirmed
	}
	return s.notifier.SendVerification(ctx, user)
}

// Login checks the credentials and mints a bearer token. An unknown email
// and a wrong password produce the same error; the verification check runs
// before the password check, so an unverified account is reported distinctly.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return "", appErr.ErrInvalidCredentials
		}
		return "", err
	}
	if !user.Verified() {
		return "", appErr.ErrNotVerified
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", appErr.ErrInvalidCredentials
	}
	return s.issuer.Issue(ctx, user)
}

// Logout revokes every bearer token of the account.
func (s *AuthService) Logout(ctx context.Context, user *model.User) error {
	if err := s.issuer.RevokeAll(ctx, user.ID); err != nil {
		logutil.GetLogger(ctx).Error("revoke tokens failed", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}
