// Package model defines domain entities for the application.
package model

import "time"

// Role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Email and Username are each unique.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HashedPassword string    `json:"-"` // Never serialize
	IsActive       bool      `json:"is_active"`
	Role           string    `json:"role"`
	PhoneNumber    string    `json:"phone_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// Claims holds the verified identity extracted from a bearer token.
// This is injected into the request context by auth middleware.
type Claims struct {
	UserID   int64
	Username string
	Role     string
}
