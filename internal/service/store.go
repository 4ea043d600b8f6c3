// Package service contains the lifecycle coordinators: intake, payment
// reconciliation and claim handling.  Each coordinator drives the ticket
// state machine exclusively through the conditional-update contract below,
// so concurrent conflicting requests are resolved by the storage layer and
// never by in-process locking.
package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/queue"
)

// TicketStore is the transition contract the coordinators run against.
// Every mutating call is a single atomic compare-and-set on the ticket's
// current status (and claimant, where ownership matters) that returns
// repository.ErrInvalidTransition when the precondition no longer holds.
// Implemented by repository.TicketRepo; tests use an in-memory equivalent.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByCode(ctx context.Context, code string) (model.Ticket, error)
	GetByID(ctx context.Context, id uint64) (model.Ticket, error)
	MarkPaid(ctx context.Context, code, providerRef string) error
	SetPaymentRef(ctx context.Context, code, providerRef string) error
	Claim(ctx context.Context, id, sharpenerID uint64) error
	PromoteUnpaid(ctx context.Context, id uint64) error
	UnclaimInProgress(ctx context.Context, id, sharpenerID uint64) error
	DemoteUnclaimedPaid(ctx context.Context, id uint64) error
	Complete(ctx context.Context, id, sharpenerID uint64) error
	Cancel(ctx context.Context, id, sharpenerID uint64) error
}

// Dispatcher publishes ticket events for customer notification.
// Implemented by queue.Publisher.  Dispatch failures are logged and
// dropped: delivery is best effort and never affects ticket state.
type Dispatcher interface {
	Publish(ctx context.Context, event queue.TicketEvent) error
}

// publish fires an event and logs any failure.  Callers invoke it only
// after their conditional update succeeded, which is what makes each
// notification trigger exactly once per transition.
func publish(ctx context.Context, d Dispatcher, event queue.TicketEvent) {
	if d == nil {
		return
	}
	event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if err := d.Publish(ctx, event); err != nil {
		log.Printf("notify: publish %s for ticket %s failed: %v", event.Kind, event.TicketCode, err)
	}
}

// baseEvent fills the ticket fields shared by all event kinds.
func baseEvent(kind string, t model.Ticket, lang string) queue.TicketEvent {
	return queue.TicketEvent{
		Kind:          kind,
		TicketID:      t.ID,
		TicketCode:    t.Code,
		CustomerName:  t.CustomerName,
		CustomerPhone: t.CustomerPhone,
		Brand:         t.Brand,
		Color:         t.Color,
		Size:          t.Size,
		PriceDKK:      t.PriceDKK,
		Lang:          lang,
	}
}
