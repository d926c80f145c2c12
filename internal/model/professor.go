package model

import "time"

// Professor is a faculty account. The engine trusts UID as given by the
// token; password login exists only for first-party dashboards.
type Professor struct {
	UID           string    `json:"uid"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProfessorInfo is the acting identity attached to claims and toggles.
type ProfessorInfo struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// ProfessorLoginRequest is the payload for professor authentication.
type ProfessorLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// ProfessorLoginResponse is returned after successful professor login.
type ProfessorLoginResponse struct {
	Token     string    `json:"token"`
	Professor Professor `json:"professor"`
}
