package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skate-ticket-service/internal/middleware"
	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/service"
)

// SharpenerHandler serves the authenticated staff surface: the work queue,
// the dashboard and the lifecycle transitions.  Transition conflicts are
// 409s; losing a race for a ticket is an everyday event at the counter,
// not an error worth alarming anyone about.
type SharpenerHandler struct {
	Tickets  *repository.TicketRepo
	Feedback *repository.FeedbackRepo
	Claims   *service.Coordinator
}

func NewSharpenerHandler(t *repository.TicketRepo, f *repository.FeedbackRepo, cl *service.Coordinator) *SharpenerHandler {
	return &SharpenerHandler{Tickets: t, Feedback: f, Claims: cl}
}

// queueStatuses are the statuses the queue endpoint may list.
var queueStatuses = map[string]bool{
	model.StatusUnpaid:     true,
	model.StatusPaid:       true,
	model.StatusInProgress: true,
	model.StatusCompleted:  true,
	model.StatusCancelled:  true,
}

// Queue lists tickets in one status, oldest first.  Defaults to the paid
// queue, which is what a sharpener looking for work wants.
func (h *SharpenerHandler) Queue(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = model.StatusPaid
	}
	if !queueStatuses[status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tickets, err := h.Tickets.ListByStatus(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": status, "tickets": ticketViews(tickets)})
}

// Dashboard aggregates the counter overview: queue depths, today's
// completions, the caller's recent work and their average rating.
func (h *SharpenerHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id := middleware.SharpenerID(c)

	counts := map[string]int{}
	for _, status := range []string{model.StatusUnpaid, model.StatusPaid, model.StatusInProgress} {
		n, err := h.Tickets.CountByStatus(ctx, status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		counts[status] = n
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	completedToday, err := h.Tickets.CountCompletedSince(ctx, midnight)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	recent, err := h.Tickets.RecentCompletedBy(ctx, id, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	avg, ratings, err := h.Feedback.RatingForSharpener(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"queue_counts":     counts,
		"completed_today":  completedToday,
		"recent_completed": ticketViews(recent),
		"rating": echo.Map{
			"average": avg,
			"count":   ratings,
		},
	})
}

// transition wraps the shared shape of the five lifecycle endpoints.
func (h *SharpenerHandler) transition(c echo.Context, op func(ctx context.Context, ticketID, sharpenerID uint64) error) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := op(ctx, id, middleware.SharpenerID(c)); err != nil {
		return transitionError(c, err)
	}
	t, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}
	return c.JSON(http.StatusOK, newTicketView(t))
}

// Claim takes a paid ticket into the caller's hands.
func (h *SharpenerHandler) Claim(c echo.Context) error {
	return h.transition(c, h.Claims.Claim)
}

// Promote marks an unpaid ticket as paid (cash at the counter).
func (h *SharpenerHandler) Promote(c echo.Context) error {
	return h.transition(c, h.Claims.Promote)
}

// Unclaim releases a ticket back to the queue, or undoes a promotion.
func (h *SharpenerHandler) Unclaim(c echo.Context) error {
	return h.transition(c, h.Claims.Unclaim)
}

// Complete finishes the caller's in-progress ticket and notifies the
// customer for pickup.
func (h *SharpenerHandler) Complete(c echo.Context) error {
	return h.transition(c, func(ctx context.Context, ticketID, sharpenerID uint64) error {
		_, err := h.Claims.Complete(ctx, ticketID, sharpenerID)
		return err
	})
}

// Cancel terminates an unpaid or paid ticket.
func (h *SharpenerHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Claims.Cancel)
}
