// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account holder. PasswordDigest and RememberDigest are one-way
// digests; the plaintext password and the raw remember token are never stored.
type User struct {
	ID             string    `json:"id"        db:"id"`
	Name           string    `json:"name"      db:"name"`
	Email          string    `json:"email"     db:"email"` // lower-cased at write time, unique case-insensitive
	PasswordDigest string    `json:"-"         db:"password_digest"`
	RememberDigest string    `json:"-"         db:"remember_digest"` // rotated on sign-out, never cleared
	IsAdmin        bool      `json:"isAdmin"   db:"is_admin"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
