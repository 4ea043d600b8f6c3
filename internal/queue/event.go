// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into customer notifications.
package queue

// Event kinds published on the ticket.notify queue.  Each kind is emitted
// by exactly one lifecycle transition, and only by the request that won
// that transition, so a customer never receives the same notification
// twice for one ticket.
const (
	EventTicketCreated   = "ticket.created"
	EventTicketPaid      = "ticket.paid"
	EventReadyForPickup  = "ticket.completed"
	EventTicketCancelled = "ticket.cancelled"
)

// TicketEvent is published whenever a ticket transition should notify the
// customer.  It carries enough information for the consumer to compose and
// send the SMS without querying the primary database.
type TicketEvent struct {
	Kind          string `json:"kind"`
	TicketID      uint64 `json:"ticket_id"`
	TicketCode    string `json:"ticket_code"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Brand         string `json:"brand"`
	Color         string `json:"color"`
	Size          int    `json:"size"`
	PriceDKK      int    `json:"price_dkk"`
	Lang          string `json:"lang"`
	PaymentURL    string `json:"payment_url,omitempty"`
	FeedbackURL   string `json:"feedback_url,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
