package models

import "time"

// User represents an account in the system
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	IsActive     bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// PublicUser is the part of a user exposed by the API
type PublicUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the public projection of the user
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// RegisterRequest represents a registration request.
// Username is optional and defaults to the local part of the email.
// Passwords are limited to 72 bytes, the bcrypt input limit.
type RegisterRequest struct {
	Username string `json:"username" validate:"max=150"`
	Email    string `json:"email" validate:"required,max=254,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
