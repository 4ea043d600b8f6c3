package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/queue"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/utils"
)

// ErrValidation marks user-correctable intake failures.  Handlers surface
// the wrapped message with a 400 and never a server error.
var ErrValidation = errors.New("validation")

// ErrCodeSpaceExhausted is returned when repeated code generation keeps
// colliding.  Practically unreachable with a 20^5 code space, but the retry
// loop is bounded so a broken store cannot spin forever.
var ErrCodeSpaceExhausted = errors.New("ticket code space exhausted")

// maxCodeAttempts bounds generate-and-insert retries per ticket.
const maxCodeAttempts = 10

// IntakeRequest carries the customer form fields for a new ticket.
type IntakeRequest struct {
	Name  string
	Phone string
	Brand string
	Color string
	Size  int
	Lang  string // notification language, from Accept-Language
}

// Intake creates tickets: it validates the request, stamps the price from
// the current tariff, reserves a unique code and publishes the creation
// event carrying the payment (or confirmation) link.
type Intake struct {
	Store    TicketStore
	Dispatch Dispatcher
	PriceDKK int
	MinSize  int
	MaxSize  int
	BaseURL  string

	// generate is swappable for tests; defaults to utils.GenerateTicketCode.
	generate func() (string, error)
}

// NewIntake wires an Intake with the production code generator.
func NewIntake(store TicketStore, dispatch Dispatcher, priceDKK, minSize, maxSize int, baseURL string) *Intake {
	return &Intake{
		Store:    store,
		Dispatch: dispatch,
		PriceDKK: priceDKK,
		MinSize:  minSize,
		MaxSize:  maxSize,
		BaseURL:  baseURL,
		generate: utils.GenerateTicketCode,
	}
}

// CreateTicket validates and persists a new unpaid ticket.  Code
// collisions are retried internally up to maxCodeAttempts; the customer
// never sees them.  The price stamped here is immutable for the life of
// the ticket regardless of later tariff changes.
func (s *Intake) CreateTicket(ctx context.Context, req IntakeRequest) (model.Ticket, error) {
	if err := s.validate(req); err != nil {
		return model.Ticket{}, err
	}

	gen := s.generate
	if gen == nil {
		gen = utils.GenerateTicketCode
	}

	t := model.Ticket{
		CustomerName:  req.Name,
		CustomerPhone: utils.NormalizePhone(req.Phone),
		Brand:         req.Brand,
		Color:         req.Color,
		Size:          req.Size,
		PriceDKK:      s.PriceDKK,
		Status:        model.StatusUnpaid,
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := gen()
		if err != nil {
			return model.Ticket{}, err
		}
		t.Code = code
		err = s.Store.Create(ctx, &t)
		if err == nil {
			ev := baseEvent(queue.EventTicketCreated, t, req.Lang)
			if t.PriceDKK == 0 {
				ev.PaymentURL = fmt.Sprintf("%s/v1/tickets/%s/confirm", s.BaseURL, t.Code)
			} else {
				ev.PaymentURL = fmt.Sprintf("%s/pay/%s", s.BaseURL, t.Code)
			}
			publish(ctx, s.Dispatch, ev)
			return t, nil
		}
		if !errors.Is(err, repository.ErrCodeExists) {
			return model.Ticket{}, err
		}
	}
	return model.Ticket{}, ErrCodeSpaceExhausted
}

func (s *Intake) validate(req IntakeRequest) error {
	switch {
	case req.Name == "":
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	case req.Phone == "":
		return fmt.Errorf("%w: customer phone is required", ErrValidation)
	case req.Brand == "":
		return fmt.Errorf("%w: skate brand is required", ErrValidation)
	case req.Color == "":
		return fmt.Errorf("%w: skate color is required", ErrValidation)
	case req.Size < s.MinSize || req.Size > s.MaxSize:
		return fmt.Errorf("%w: skate size must be between %d and %d", ErrValidation, s.MinSize, s.MaxSize)
	}
	return nil
}
