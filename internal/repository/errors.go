// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. ErrInvalidTransition in particular is the normal outcome
// of a lost race between two concurrent requests and must never be
// treated as a storage fault.
package repository

import "errors"

// ErrInvalidTransition is returned when a conditional status update
// matched zero rows: the ticket was not in the required prior state,
// typically because a concurrent request won the transition first.
// Handlers should translate this into an HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrTicketNotFound is returned when no ticket exists for the given
// code or id. Handlers should translate this into an HTTP 404 response.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrCodeExists is returned when inserting a ticket whose code collides
// with an existing row. The intake service retries generation; this
// error is never surfaced to callers.
var ErrCodeExists = errors.New("ticket code already exists")

// ErrUsernameExists is returned when a sharpener username is taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when a sharpener email is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrInvitationExists is returned when an open invitation for the email
// already exists.
var ErrInvitationExists = errors.New("invitation already exists")

// ErrFeedbackExists is returned when feedback was already recorded for
// the ticket. Handlers should translate this into an HTTP 409 response.
var ErrFeedbackExists = errors.New("feedback already exists")
