package service

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/model"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
	"github.com/mkrylov/accountd/internal/pkg/password"
	"github.com/mkrylov/accountd/internal/pkg/timeutil"
)

// PasswordResetService owns the forgot/reset half of the lifecycle. Reset
// tokens are stored bcrypt-hashed with a TTL; a new request supersedes the
// previous one, and a request inside the throttle window is rejected before
// anything is sent.
type PasswordResetService struct {
	users    UserStore
	resets   ResetStore
	notifier Notifier
	events   EventSink
	throttle time.Duration
	ttl      time.Duration
}

func NewPasswordResetService(users UserStore, resets ResetStore, notifier Notifier, events EventSink, throttle, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		users:    users,
		resets:   resets,
		notifier: notifier,
		events:   events,
		throttle: throttle,
		ttl:      ttl,
	}
}

// SendResetLink creates or replaces the reset request for the email and
// mails the plaintext token. An unknown email surfaces as a send failure.
func (s *PasswordResetService) SendResetLink(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrResetRequestFailed
		}
		return err
	}
	now := timeutil.NowUnix()
	if existing, err := s.resets.GetByEmail(ctx, email); err == nil {
		if existing.Ctime+int64(s.throttle.Seconds()) > now {
			return appErr.ErrResetThrottled
		}
	} else if !appErr.IsNotFound(err) {
		return err
	}
	token := newResetToken()
	hash, err := password.Hash(token)
	if err != nil {
		return err
	}
	reset := &model.PasswordReset{Email: email, TokenHash: hash, Ctime: now}
	if err := s.resets.Replace(ctx, reset); err != nil {
		return err
	}
	if err := s.notifier.SendPasswordReset(ctx, user, token); err != nil {
		logutil.GetLogger(ctx).Error("reset mail failed", zap.String("email", email), zap.Error(err))
		return appErr.ErrResetRequestFailed
	}
	return nil
}

// Reset sets a new password when the presented token matches the live
// request for the email. The request is consumed; the remember token is
// rotated. Existing bearer tokens stay valid.
func (s *PasswordResetService) Reset(ctx context.Context, email, plainPassword, token string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrResetFailed
		}
		return err
	}
	reset, err := s.resets.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrInvalidResetToken
		}
		return err
	}
	now := timeutil.NowUnix()
	if reset.ExpiredAt(int64(s.ttl.Seconds()), now) {
		return appErr.ErrInvalidResetToken
	}
	if err := password.Compare(reset.TokenHash, token); err != nil {
		return appErr.ErrInvalidResetToken
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, newRememberToken(), now); err != nil {
		return appErr.ErrResetFailed
	}
	if err := s.resets.DeleteByEmail(ctx, email); err != nil {
		logutil.GetLogger(ctx).Warn("consume reset request failed", zap.String("email", email), zap.Error(err))
	}
	s.events.Dispatch(ctx, Event{Name: EventPasswordReset, User: user})
	return nil
}

// PurgeExpired deletes reset requests older than the TTL. Called by the
// cleanup job.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := timeutil.NowUnix() - int64(s.ttl.Seconds())
	return s.resets.DeleteCreatedBefore(ctx, cutoff)
}
