package domain

import "time"

// APICall records one authenticated request for usage accounting.
type APICall struct {
	ID         string
	UserID     string
	HTTPMethod string
	Endpoint   string
	CreatedAt  time.Time
}
