package sender

import (
	"context"

	"go.uber.org/zap"

	"github.com/tbilisoft/declara/internal/notification/domain"
	"github.com/tbilisoft/declara/internal/observability/metrics"
)

// logSender writes notifications to the application log. It stands in for
// a delivery channel (email, Telegram) and keeps the sweep pipeline
// exercised end to end.
type logSender struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) domain.Sender {
	return &logSender{log: log.Named("notification.sender")}
}

func (s *logSender) Send(_ context.Context, n domain.Notification) error {
	s.log.Info("notification",
		zap.Int64("user_id", int64(n.UserID)),
		zap.String("kind", string(n.Kind)),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	metrics.Scheduler().IncNotificationSent(string(n.Kind))
	return nil
}
