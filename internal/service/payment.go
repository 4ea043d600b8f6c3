package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/queue"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
)

// Signal statuses as reported by either signal source.  The push callback
// carries the provider's own status; the pull redirect carries whatever the
// browser brought back, including "unknown" when the redirect lost its
// query parameters.
const (
	SignalSucceeded = "succeeded"
	SignalFailed    = "failed"
	SignalCanceled  = "canceled"
	SignalUnknown   = "unknown"
)

// Outcome classifies what a payment signal did to the ticket.
type Outcome int

const (
	// OutcomePaid: this signal won the unpaid->paid transition.
	OutcomePaid Outcome = iota
	// OutcomeAlreadyPaid: the ticket had already left unpaid; the signal
	// is a confirmation no-op.
	OutcomeAlreadyPaid
	// OutcomeDeclined: the provider reported failure/cancellation; the
	// ticket stays unpaid and the customer may retry.
	OutcomeDeclined
	// OutcomeUnknown: the status could not be determined; the ticket is
	// untouched and the signal is safe to retry.
	OutcomeUnknown
)

// String renders the outcome for API responses.
func (o Outcome) String() string {
	switch o {
	case OutcomePaid:
		return "paid"
	case OutcomeAlreadyPaid:
		return "already_paid"
	case OutcomeDeclined:
		return "declined"
	default:
		return "unknown"
	}
}

// Signal is one payment report, from either the webhook (push) or the
// browser return redirect (pull).  Both sources resolve to the same triple
// and flow through the same reconciliation below, which is what makes
// duplicate and out-of-order delivery harmless.
type Signal struct {
	TicketCode  string
	ProviderRef string
	Status      string
	Lang        string
}

// Reconciler advances a ticket to paid exactly once, no matter how many
// signals arrive, how many times, or in what order.  The decisive step is a
// single conditional update scoped to status=unpaid; simultaneous signals
// race at the storage layer and exactly one wins.
type Reconciler struct {
	Store    TicketStore
	Provider ProviderClient
	Dispatch Dispatcher
}

// Apply processes one payment signal.  Non-succeeded statuses never
// transition state; an unknown status is resolved against the provider
// before giving up.  The returned error is nil for every normal outcome,
// including lost races and declined payments; only missing tickets and
// storage faults are errors.
func (r *Reconciler) Apply(ctx context.Context, sig Signal) (Outcome, error) {
	t, err := r.Store.GetByCode(ctx, sig.TicketCode)
	if err != nil {
		return OutcomeUnknown, err
	}

	// Anything past unpaid means some signal already won; confirm without
	// re-notifying.
	if t.Status != model.StatusUnpaid {
		return OutcomeAlreadyPaid, nil
	}

	status := sig.Status
	if status == SignalUnknown {
		if sig.ProviderRef == "" && t.PaymentRef != nil {
			sig.ProviderRef = *t.PaymentRef
		}
		if sig.ProviderRef == "" {
			return OutcomeUnknown, nil
		}
		intent, qerr := r.Provider.GetIntent(ctx, sig.ProviderRef)
		if qerr != nil {
			log.Printf("payment: status query for ticket %s failed: %v", sig.TicketCode, qerr)
			return OutcomeUnknown, nil
		}
		status = intent.Status
	}

	switch status {
	case SignalSucceeded:
		return r.markPaid(ctx, t, sig.ProviderRef, sig.Lang)
	case SignalFailed, SignalCanceled:
		// Recorded for observability only; the ticket stays unpaid and the
		// customer can retry.
		log.Printf("payment: ticket %s reported %s (ref=%s)", sig.TicketCode, status, sig.ProviderRef)
		return OutcomeDeclined, nil
	default:
		log.Printf("payment: ticket %s reported unrecognized status %q", sig.TicketCode, status)
		return OutcomeDeclined, nil
	}
}

// ConfirmFree performs the customer confirmation step for zero-price
// tickets.  It is the same transition as a succeeded payment signal and
// obeys the identical idempotency and race rules.
func (r *Reconciler) ConfirmFree(ctx context.Context, code, lang string) (Outcome, error) {
	t, err := r.Store.GetByCode(ctx, code)
	if err != nil {
		return OutcomeUnknown, err
	}
	if t.PriceDKK != 0 {
		return OutcomeUnknown, fmt.Errorf("%w: ticket %s requires payment", ErrValidation, code)
	}
	if t.Status != model.StatusUnpaid {
		return OutcomeAlreadyPaid, nil
	}
	return r.markPaid(ctx, t, "", lang)
}

// markPaid executes the conditional unpaid->paid write.  Losing the race is
// success without a notification: the winner already notified.
func (r *Reconciler) markPaid(ctx context.Context, t model.Ticket, providerRef, lang string) (Outcome, error) {
	err := r.Store.MarkPaid(ctx, t.Code, providerRef)
	if errors.Is(err, repository.ErrInvalidTransition) {
		return OutcomeAlreadyPaid, nil
	}
	if err != nil {
		return OutcomeUnknown, err
	}
	publish(ctx, r.Dispatch, baseEvent(queue.EventTicketPaid, t, lang))
	return OutcomePaid, nil
}

// EnsureIntent returns a usable payment intent for an unpaid ticket,
// reusing the stored reference when the provider says it still accepts
// payment and replacing it otherwise.  The replacement is guarded by
// status=unpaid so a payment landing concurrently cannot have its
// reference overwritten.
func (r *Reconciler) EnsureIntent(ctx context.Context, t model.Ticket) (Intent, error) {
	if t.PaymentRef != nil {
		intent, err := r.Provider.GetIntent(ctx, *t.PaymentRef)
		if err == nil && r.Provider.Reusable(intent.Status) {
			return intent, nil
		}
		if err != nil {
			log.Printf("payment: could not check intent %s for ticket %s: %v", *t.PaymentRef, t.Code, err)
		}
	}

	intent, err := r.Provider.CreateIntent(ctx, t)
	if err != nil {
		return Intent{}, err
	}
	if err := r.Store.SetPaymentRef(ctx, t.Code, intent.Ref); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			// The ticket got paid while we were talking to the provider;
			// the old reference stands.
			return intent, nil
		}
		return Intent{}, err
	}
	return intent, nil
}
