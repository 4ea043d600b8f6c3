package model

import "time"

// Sharpener represents a staff account able to claim and complete tickets.
// Credentials are a unique username plus a bcrypt password hash; inactive
// accounts cannot log in.
//
// Fields:
//
//	ID           – primary key identifier.
//	Name         – display name shown to customers in notifications.
//	Email        – unique email address (invitation target).
//	Phone        – contact phone number.
//	Username     – unique login handle.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
type Sharpener struct {
	ID           uint64    // sharpeners.id
	Name         string    // sharpeners.name
	Email        string    // sharpeners.email
	Phone        string    // sharpeners.phone
	Username     string    // sharpeners.username
	PasswordHash string    // sharpeners.password_hash
	IsActive     bool      // sharpeners.is_active
	CreatedAt    time.Time // sharpeners.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is persisted.
//
// Fields:
//
//	ID          – primary key identifier.
//	SharpenerID – owner of the token.
//	TokenHash   – SHA-256 hex digest of the token value.
//	ExpiresAt   – expiration timestamp.
//	RevokedAt   – when the token was revoked (null if still active).
//	CreatedAt   – timestamp of creation.
type RefreshToken struct {
	ID          uint64     // refresh_tokens.id
	SharpenerID uint64     // refresh_tokens.sharpener_id
	TokenHash   string     // refresh_tokens.token_hash
	ExpiresAt   time.Time  // refresh_tokens.expires_at
	RevokedAt   *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt   time.Time  // refresh_tokens.created_at
}
