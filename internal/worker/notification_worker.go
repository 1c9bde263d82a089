package worker

import (
	"github.com/insideout/userdb/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to account events.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
