package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/service"
)

// StartNotificationWorker subscribes the notification service to domain events.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		logger.Debug("notifications disabled")
		return
	}
	notifications.RegisterHandlers()
	logger.Info("notification worker started")
}
