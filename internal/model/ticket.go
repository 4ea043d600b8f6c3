package model

import "time"

// Ticket lifecycle states.  A ticket only ever moves along the edges
// enforced by the repository's conditional updates:
//
//	unpaid -> paid -> in_progress -> completed
//	in_progress -> paid            (unclaim by the owning sharpener)
//	paid -> unpaid                 (undo of a manual promotion, unowned only)
//	unpaid|paid -> cancelled       (terminal)
const (
	StatusUnpaid     = "unpaid"
	StatusPaid       = "paid"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Ticket mirrors the `tickets` table.  Price is stamped in whole DKK at
// creation time from the tariff configured at that moment; a later tariff
// change never touches existing rows.  PaymentRef holds the external
// payment-provider identifier and may only be replaced while the ticket is
// still unpaid.  ClaimedBy is non-nil exactly while the ticket is
// in_progress; SharpenedBy records the worker permanently once the ticket
// completes.
//
// Fields:
//
//	ID            – primary key identifier.
//	Code          – short unique human-facing code, immutable once assigned.
//	CustomerName  – customer display name.
//	CustomerPhone – country-coded digit string.
//	Brand/Color   – skate details collected at intake.
//	Size          – skate size within the configured range.
//	PriceDKK      – price in whole DKK, immutable after creation.
//	Status        – one of the Status* constants above.
//	PaymentRef    – provider payment reference (nullable).
//	ClaimedBy     – sharpener currently servicing the ticket (nullable).
//	SharpenedBy   – sharpener who completed the ticket (nullable).
//	CancelledBy   – sharpener who cancelled the ticket (nullable).
//	CreatedAt     – creation timestamp.
//	PaidAt/StartedAt/CompletedAt/CancelledAt – set by the transition that
//	produces the corresponding state.
type Ticket struct {
	ID            uint64     // tickets.id
	Code          string     // tickets.code
	CustomerName  string     // tickets.customer_name
	CustomerPhone string     // tickets.customer_phone
	Brand         string     // tickets.brand
	Color         string     // tickets.color
	Size          int        // tickets.size
	PriceDKK      int        // tickets.price_dkk
	Status        string     // tickets.status
	PaymentRef    *string    // tickets.payment_ref (nullable)
	ClaimedBy     *uint64    // tickets.claimed_by_id (nullable)
	SharpenedBy   *uint64    // tickets.sharpened_by_id (nullable)
	CancelledBy   *uint64    // tickets.cancelled_by_id (nullable)
	CreatedAt     time.Time  // tickets.created_at
	PaidAt        *time.Time // tickets.paid_at (nullable)
	StartedAt     *time.Time // tickets.started_at (nullable)
	CompletedAt   *time.Time // tickets.completed_at (nullable)
	CancelledAt   *time.Time // tickets.cancelled_at (nullable)
}

// Terminal reports whether the status admits no further transitions.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}
