package dto

import (
	"time"

	"github.com/spec-kit/mentorship-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Password    string                `json:"password"`
	Role        domain.UserRole       `json:"role"`
	Tier        domain.ReputationTier `json:"tier"`
	CareerStage domain.CareerStage    `json:"career_stage"`
	Tags        []string              `json:"tags"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse exposes the public profile fields.
type UserResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Email       string                `json:"email"`
	Role        domain.UserRole       `json:"role"`
	Tier        domain.ReputationTier `json:"tier"`
	CareerStage domain.CareerStage    `json:"career_stage"`
	Tags        []string              `json:"tags"`
	CreatedAt   time.Time             `json:"created_at"`
}

// AuthResponse returns a session token alongside the account.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
