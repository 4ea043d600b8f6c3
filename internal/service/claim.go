package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/queue"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
)

// Coordinator guards the sharpener-driven transitions.  Every operation is
// one conditional update gated on the current status (and claimant where
// ownership matters), so two sharpeners racing for the same ticket resolve
// to one winner and one ErrInvalidTransition.  The authenticated sharpener
// identity is passed into every call; nothing here reads ambient session
// state.
type Coordinator struct {
	Store    TicketStore
	Dispatch Dispatcher
	BaseURL  string
}

// Claim takes exclusive ownership of a paid ticket.
func (s *Coordinator) Claim(ctx context.Context, ticketID, sharpenerID uint64) error {
	return s.Store.Claim(ctx, ticketID, sharpenerID)
}

// Promote moves an unpaid ticket directly to paid without a payment
// signal.  This is the counter workflow for cash handling: the sharpener
// vouches for the payment, then claims the ticket like any other.
func (s *Coordinator) Promote(ctx context.Context, ticketID, sharpenerID uint64) error {
	// sharpenerID is not recorded on the row (no claim is taken); it is
	// required here so the caller proves an authenticated worker asked.
	_ = sharpenerID
	return s.Store.PromoteUnpaid(ctx, ticketID)
}

// Unclaim reverses either of the two claim-shaped states: an in_progress
// ticket owned by the calling sharpener returns to paid, and a paid ticket
// nobody owns (a manual promotion being undone) returns to unpaid.  The
// owned case is attempted first; both failing is the caller's race loss.
func (s *Coordinator) Unclaim(ctx context.Context, ticketID, sharpenerID uint64) error {
	err := s.Store.UnclaimInProgress(ctx, ticketID, sharpenerID)
	if !errors.Is(err, repository.ErrInvalidTransition) {
		return err
	}
	return s.Store.DemoteUnclaimedPaid(ctx, ticketID)
}

// Complete finishes an in_progress ticket owned by the calling sharpener
// and notifies the customer that the skates are ready.  Only the winner of
// the conditional update publishes, so the pickup notification fires at
// most once per ticket.  The notification fields (code, phone, language)
// are read before the conditional update; they are immutable after intake,
// and reading first means a flaky read after the commit cannot swallow the
// customer's one pickup message.
func (s *Coordinator) Complete(ctx context.Context, ticketID, sharpenerID uint64) (model.Ticket, error) {
	t, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		return model.Ticket{}, err
	}
	if err := s.Store.Complete(ctx, ticketID, sharpenerID); err != nil {
		return model.Ticket{}, err
	}
	ev := baseEvent(queue.EventReadyForPickup, t, "")
	ev.FeedbackURL = fmt.Sprintf("%s/feedback/%s", s.BaseURL, t.Code)
	publish(ctx, s.Dispatch, ev)
	done, err := s.Store.GetByID(ctx, ticketID)
	if err != nil {
		// The transition committed and the customer was notified; hand the
		// caller the pre-completion snapshot rather than an error.
		return t, nil
	}
	return done, nil
}

// Cancel terminates an unpaid or paid ticket and notifies the customer.
func (s *Coordinator) Cancel(ctx context.Context, ticketID, sharpenerID uint64) error {
	if err := s.Store.Cancel(ctx, ticketID, sharpenerID); err != nil {
		return err
	}
	if t, err := s.Store.GetByID(ctx, ticketID); err == nil {
		publish(ctx, s.Dispatch, baseEvent(queue.EventTicketCancelled, t, ""))
	}
	return nil
}
