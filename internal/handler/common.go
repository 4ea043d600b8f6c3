package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
)

// dbTimeout bounds the duration of handler-initiated database work.
const dbTimeout = 5 * time.Second

// ticketView is the JSON shape of a ticket.  Customer phone numbers are
// deliberately absent from public responses; the code alone grants status
// access, not contact details.
type ticketView struct {
	ID          uint64     `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"customer_name"`
	Brand       string     `json:"brand"`
	Color       string     `json:"color"`
	Size        int        `json:"size"`
	PriceDKK    int        `json:"price_dkk"`
	Status      string     `json:"status"`
	ClaimedBy   *uint64    `json:"claimed_by,omitempty"`
	SharpenedBy *uint64    `json:"sharpened_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func newTicketView(t model.Ticket) ticketView {
	return ticketView{
		ID:          t.ID,
		Code:        t.Code,
		Name:        t.CustomerName,
		Brand:       t.Brand,
		Color:       t.Color,
		Size:        t.Size,
		PriceDKK:    t.PriceDKK,
		Status:      t.Status,
		ClaimedBy:   t.ClaimedBy,
		SharpenedBy: t.SharpenedBy,
		CreatedAt:   t.CreatedAt,
		PaidAt:      t.PaidAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
		CancelledAt: t.CancelledAt,
	}
}

func ticketViews(ts []model.Ticket) []ticketView {
	out := make([]ticketView, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTicketView(t))
	}
	return out
}

// paramID parses the :id path parameter.
func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// transitionError maps the lifecycle sentinels onto HTTP responses.  A
// failed conditional update is a conflict, not a server fault: the ticket
// moved on and the caller should refresh their view of the queue.
func transitionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket not available"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "operation failed"})
	}
}
