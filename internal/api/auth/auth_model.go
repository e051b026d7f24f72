package auth

import "github.com/snetlabs/social-network/internal/api"

// RegisterRequest represents the expected JSON body for user registration.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
}

// LoginRequest represents the expected JSON body for user login. Username
// accepts either the username or the email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the successful JSON response after login.
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        api.UserResponse `json:"user"`
}

// Response is a generic API response for simple success messages.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
