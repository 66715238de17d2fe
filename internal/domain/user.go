package domain

import "time"

// UserRole distinguishes the three kinds of platform accounts.
type UserRole string

const (
	RoleMentee      UserRole = "MENTEE"
	RoleMentor      UserRole = "MENTOR"
	RoleCoordinator UserRole = "COORDINATOR"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the profile consumed by the matching core. Credentials belong to
// the auth flow; the scorer treats the profile fields as read-only input.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Tier         ReputationTier
	CareerStage  CareerStage
	Tags         []string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
