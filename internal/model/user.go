package model

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates the platform roles.
type Role string

const (
	RoleTeacher         Role = "teacher"
	RoleCorporate       Role = "corporate"
	RoleTrainingCompany Role = "training_company"
	RoleAdmin           Role = "admin"
	RoleExaminee        Role = "examinee"
)

// AuthorRoles are the roles allowed to own exams and questions.
var AuthorRoles = []Role{RoleTeacher, RoleCorporate, RoleTrainingCompany, RoleAdmin}

// User represents a platform account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Role     Role   `json:"role" binding:"required,oneof=teacher corporate training_company admin examinee"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// UpdateUserRequest is the payload for updating an existing account.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Name     string `json:"name" binding:"omitempty,min=2,max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
}
