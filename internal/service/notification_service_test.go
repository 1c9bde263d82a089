package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/insideout/userdb/internal/config"
)

func TestResetLink(t *testing.T) {
	n := NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{
		ResetLinkBaseURL: "https://localhost:3000/dashboard/resetPassword?lang=en",
	})
	assert.Equal(t, "https://localhost:3000/dashboard/resetPassword?lang=en&token=abc", n.ResetLink("abc"))

	n = NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{})
	assert.Empty(t, n.ResetLink("abc"))
}
