package service

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/insideout/userdb/internal/config"
	"github.com/insideout/userdb/internal/events"
)

// NotificationService reacts to account events. Mail delivery is stubbed out
// and only logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventUserLoggedIn, n.handleAudit)
	n.dispatcher.Subscribe(events.EventUserLoggedOut, n.handleAudit)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordResetCompleted, n.handleAudit)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID))
	if payload, ok := event.Payload.(events.UserRegisteredPayload); ok {
		n.sendEmailStub(ctx, payload.Email, "Welcome to InsideOut", "")
	}
	return nil
}

func (n *NotificationService) handleAudit(_ context.Context, event events.Event) error {
	n.logger.Info("AccountEvent", zap.String("type", string(event.Type)), zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		n.logger.Warn("PasswordResetRequested without payload", zap.String("user_id", event.UserID))
		return nil
	}
	n.logger.Info("PasswordResetRequested", zap.String("user_id", event.UserID), zap.Time("expires_at", payload.ExpiresAt))
	n.sendEmailStub(ctx, payload.Email, "Password Reset Request", n.ResetLink(payload.Token))
	return nil
}

// ResetLink builds the link mailed to the user.
func (n *NotificationService) ResetLink(token string) string {
	base := strings.TrimSpace(n.cfg.ResetLinkBaseURL)
	if base == "" {
		return ""
	}
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (n *NotificationService) sendEmailStub(_ context.Context, to, subject, link string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("link", link))
}
