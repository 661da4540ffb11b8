// Package auth contains authentication and authorization logic: password
// hashing, token issuance and verification, the registration and login
// flows, and the middleware that enforces a verified identity on protected
// routes.
package auth

import "time"

// User represents a user account as stored in the database. The json:"-"
// tag on HashedPassword keeps the digest out of every API response.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	IsActive       bool      `json:"is_active"`
}
