package dto

import (
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
)

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type RegistrationRequest struct {
	Email     string `json:"email" validate:"max=254"`
	Password  string `json:"password" validate:"max=128"`
	Password2 string `json:"password2" validate:"max=128"`
	FullName  string `json:"full_name" validate:"max=150"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	OTPCode   string `json:"otp_code" validate:"max=32"`
}

type VerifyCodeRequest struct {
	Email   string `json:"email" validate:"max=254"`
	OTPCode string `json:"otp_code" validate:"max=32"`
}

type VerifyCodeResponse struct {
	Message  string `json:"message"`
	Verified bool   `json:"verified"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type PasswordResetConfirmRequest struct {
	Email        string `json:"email" validate:"max=254"`
	OTPCode      string `json:"otp_code" validate:"max=32"`
	NewPassword  string `json:"new_password" validate:"max=128"`
	NewPassword2 string `json:"new_password2" validate:"max=128"`
}

// CodeResponse answers every code request. CanResend and WaitTime are set
// only while a cooldown is running.
type CodeResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	CanResend *bool  `json:"canResend,omitempty"`
	WaitTime  int    `json:"waitTime,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func NewUserSummary(user *domain.User) UserSummary {
	return UserSummary{
		ID:       user.ID.String(),
		Email:    user.Email,
		FullName: user.FullName,
	}
}

type SessionResponse struct {
	User    UserSummary `json:"user"`
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
}

func NewSessionResponse(user *domain.User, tokens *domain.TokenPair) *SessionResponse {
	return &SessionResponse{
		User:    NewUserSummary(user),
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	}
}

type AccessResponse struct {
	Access string `json:"access"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsActive   bool      `json:"is_active"`
	IsStaff    bool      `json:"is_staff"`
	DateJoined time.Time `json:"date_joined"`
}

func NewUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID.String(),
		Email:      user.Email,
		FullName:   user.FullName,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsActive:   user.Active,
		IsStaff:    user.IsStaff,
		DateJoined: user.CreatedAt,
	}
}
