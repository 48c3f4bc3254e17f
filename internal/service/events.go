package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/mkrylov/accountd/internal/model"
)

const (
	EventRegistered    = "user.registered"
	EventVerified      = "user.verified"
	EventPasswordReset = "user.password_reset"
)

type Event struct {
	Name string
	User *model.User
}

// EventSink receives lifecycle events synchronously. Dispatch must not fail
// the operation that emitted the event.
type EventSink interface {
	Dispatch(ctx context.Context, evt Event)
}

type logSink struct{}

func NewLogSink() EventSink {
	return logSink{}
}

func (logSink) Dispatch(ctx context.Context, evt Event) {
	logutil.GetLogger(ctx).Info("lifecycle event",
		zap.String("event", evt.Name),
		zap.String("user_id", evt.User.ID),
	)
}

type MultiSink []EventSink

func (m MultiSink) Dispatch(ctx context.Context, evt Event) {
	for _, sink := range m {
		sink.Dispatch(ctx, evt)
	}
}
