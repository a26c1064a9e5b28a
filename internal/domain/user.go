// Package domain contains the core data types for the Barberbook application.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, auth, handler).
package domain

import "time"

// Role is the access level assigned to a user account.
type Role string

const (
	// RoleClient is the default role: can book appointments and leave reviews.
	RoleClient Role = "client"
	// RoleBarber can own barbershops and manage their services.
	RoleBarber Role = "barber"
	// RoleAdmin can access every resource. Note the admin privilege only
	// bypasses ownership checks, never role checks; an admin-only route
	// must name RoleAdmin explicitly.
	RoleAdmin Role = "admin"
)

// User is the public view of an account as loaded for request authentication.
// It deliberately has no password field: the identity loader selects only
// these columns, so credential material can never leak into a response or log.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Credentials is the stored authentication record for a user, loaded only by
// the login flow. Never attach this type to a request context.
type Credentials struct {
	UserID       int64
	PasswordHash string
	IsActive     bool
}

// Barbershop is a shop owned by a barber account.
type Barbershop struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
