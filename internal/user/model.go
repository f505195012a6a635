package user

import "time"

// User is never serialized with its password hash.
type User struct {
	ID             int       `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           string    `db:"role" json:"role"`
	Phone          string    `db:"phone" json:"phone"`
	Avatar         string    `db:"avatar" json:"avatar"`
	Bio            string    `db:"bio" json:"bio"`
	Specialization string    `db:"specialization" json:"specialization"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=user owner"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest only touches fields that are present.
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone          *string `json:"phone" binding:"omitempty,max=30"`
	Avatar         *string `json:"avatar" binding:"omitempty,url"`
	Bio            *string `json:"bio" binding:"omitempty,max=1000"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
