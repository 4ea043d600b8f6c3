package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skate-ticket-service/internal/i18n"
	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/service"
)

// TicketHandler serves the public, unauthenticated customer surface:
// ticket intake, status lookup by code, free-ticket confirmation and
// feedback.  Knowing a ticket code is the only credential a customer has.
type TicketHandler struct {
	Intake   *service.Intake
	Recon    *service.Reconciler
	Tickets  *repository.TicketRepo
	Feedback *repository.FeedbackRepo
}

func NewTicketHandler(in *service.Intake, rec *service.Reconciler, t *repository.TicketRepo, f *repository.FeedbackRepo) *TicketHandler {
	return &TicketHandler{Intake: in, Recon: rec, Tickets: t, Feedback: f}
}

type createTicketReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Brand string `json:"brand"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

type feedbackReq struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create registers a new sharpening ticket and triggers the creation SMS
// with the payment (or confirmation) link.
func (h *TicketHandler) Create(c echo.Context) error {
	var req createTicketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Intake.CreateTicket(ctx, service.IntakeRequest{
		Name:  strings.TrimSpace(req.Name),
		Phone: req.Phone,
		Brand: strings.TrimSpace(req.Brand),
		Color: strings.TrimSpace(req.Color),
		Size:  req.Size,
		Lang:  i18n.DetectLanguage(c.Request().Header.Get("Accept-Language")),
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, newTicketView(t))
}

// Get returns the ticket's current state.  While the ticket is unpaid and
// priced, the response also carries a usable payment intent so the pay page
// can mount the provider widget directly; a stale intent is replaced
// transparently.
func (h *TicketHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tickets.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return transitionError(c, err)
	}

	view := newTicketView(t)
	if t.Status == model.StatusUnpaid && t.PriceDKK > 0 {
		intent, err := h.Recon.EnsureIntent(ctx, t)
		if err != nil {
			// Status is still useful without a payment widget.
			return c.JSON(http.StatusOK, echo.Map{"ticket": view})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"ticket":        view,
			"payment_ref":   intent.Ref,
			"client_secret": intent.ClientSecret,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": view})
}

// ConfirmFree is the customer confirmation step for zero-price tickets.
// Repeat confirmations are harmless.
func (h *TicketHandler) ConfirmFree(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	lang := i18n.DetectLanguage(c.Request().Header.Get("Accept-Language"))
	outcome, err := h.Recon.ConfirmFree(ctx, c.Param("code"), lang)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return transitionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"payment_status": outcome.String()})
}

// SubmitFeedback records a rating for a completed ticket.  One rating per
// ticket; repeats conflict.
func (h *TicketHandler) SubmitFeedback(c echo.Context) error {
	var req feedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tickets.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return transitionError(c, err)
	}
	if t.Status != model.StatusCompleted {
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket is not completed"})
	}

	f := model.Feedback{TicketID: t.ID, Rating: req.Rating, Comment: strings.TrimSpace(req.Comment)}
	if err := h.Feedback.Create(ctx, &f); err != nil {
		if errors.Is(err, repository.ErrFeedbackExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "feedback already submitted"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save feedback failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": f.ID, "rating": f.Rating})
}

// GetFeedback returns the feedback left on a ticket, if any.
func (h *TicketHandler) GetFeedback(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tickets.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return transitionError(c, err)
	}
	f, err := h.Feedback.GetByTicketID(ctx, t.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no feedback for ticket"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rating": f.Rating, "comment": f.Comment, "created_at": f.CreatedAt})
}
