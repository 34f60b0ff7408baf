package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Authentication is email based; IsAdmin gates the train
// management and log inspection endpoints.  The json tags are omitted
// because these structs are used internally by the repository layer;
// handlers define their own response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  Name         – full name.
//  Phone        – optional phone number.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – whether the user may manage trains and read logs.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	Phone        *string   // users.phone (nullable)
	PasswordHash string    // users.password_hash
	IsAdmin      bool      // users.is_admin
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; the plain token is never stored,
// only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  IsRevoked – whether the token has been invalidated.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	IsRevoked bool      // refresh_tokens.is_revoked
	CreatedAt time.Time // refresh_tokens.created_at
}
