package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/service"
)

// ResetCleanupJob deletes expired password-reset requests. An expired
// request already fails token comparison; this only keeps the table small.
type ResetCleanupJob struct {
	resets *service.PasswordResetService
}

func NewResetCleanupJob(resets *service.PasswordResetService) *ResetCleanupJob {
	return &ResetCleanupJob{resets: resets}
}

func (j *ResetCleanupJob) Name() string {
	return "password_reset_cleanup"
}

func (j *ResetCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.resets.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("purged expired reset requests", zap.Int64("count", deleted))
	}
	return nil
}
