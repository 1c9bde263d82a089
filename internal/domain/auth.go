package domain

import "time"

// PasswordReset is a single-use reset token issued through the forgot-password flow.
type PasswordReset struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the reset can still be redeemed at now.
func (p *PasswordReset) Usable(now time.Time) bool {
	return p != nil && p.UsedAt == nil && now.Before(p.ExpiresAt)
}
