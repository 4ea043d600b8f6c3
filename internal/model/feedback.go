package model

import "time"

// Feedback holds a customer rating for a completed ticket.  At most one
// row exists per ticket (unique index on ticket_id) and rows are never
// updated after creation.
type Feedback struct {
	ID        uint64    // feedback.id
	TicketID  uint64    // feedback.ticket_id (unique)
	Rating    int       // feedback.rating, 1-5
	Comment   string    // feedback.comment
	CreatedAt time.Time // feedback.created_at
}

// Invitation is a single-use, time-limited token letting an invited
// sharpener create an account.
type Invitation struct {
	ID        uint64    // invitations.id
	Email     string    // invitations.email (unique)
	Token     string    // invitations.token (unique)
	Used      bool      // invitations.used
	CreatedAt time.Time // invitations.created_at
	ExpiresAt time.Time // invitations.expires_at
}
