package dto

import (
	"time"

	"github.com/insideout/userdb/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest payload for starting a reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest payload for redeeming a reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse is the public view of a user; it never includes the hash.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// NewUserResponses maps a list of domain users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// APICallResponse is one usage record.
type APICallResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	HTTPMethod string    `json:"http_method"`
	Endpoint   string    `json:"endpoint"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAPICallResponses maps usage records.
func NewAPICallResponses(calls []domain.APICall) []APICallResponse {
	out := make([]APICallResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, APICallResponse{
			ID:         c.ID,
			UserID:     c.UserID,
			HTTPMethod: c.HTTPMethod,
			Endpoint:   c.Endpoint,
			CreatedAt:  c.CreatedAt,
		})
	}
	return out
}

// SessionResponse accompanies the Set-Cookie header after login. The token
// itself is only ever sent in the HTTP-only cookie.
type SessionResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}
