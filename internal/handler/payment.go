package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skate-ticket-service/internal/config"
	"github.com/iliyamo/skate-ticket-service/internal/i18n"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/service"
	"github.com/iliyamo/skate-ticket-service/internal/utils"
)

// PaymentHandler receives the two payment signal sources: the provider's
// server-to-server webhook (push) and the customer's browser returning
// from the payment page (pull).  Both feed the same reconciler, which is
// what makes duplicate and out-of-order delivery between them harmless.
type PaymentHandler struct {
	Cfg   config.Config
	Recon *service.Reconciler
}

func NewPaymentHandler(cfg config.Config, rec *service.Reconciler) *PaymentHandler {
	return &PaymentHandler{Cfg: cfg, Recon: rec}
}

// webhookEvent is the provider's delivery envelope.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		TicketCode string `json:"ticket_code"`
		PaymentRef string `json:"payment_ref"`
		Status     string `json:"status"`
	} `json:"data"`
}

// webhookSignals maps provider event types onto reconciler signal statuses.
// Event types outside this table are acknowledged and ignored so the
// provider does not retry deliveries we will never act on.
var webhookSignals = map[string]string{
	"payment_succeeded": service.SignalSucceeded,
	"payment_failed":    service.SignalFailed,
	"payment_canceled":  service.SignalCanceled,
}

// Webhook handles a signed provider delivery.  The signature covers the
// raw body, so the body is read before any JSON decoding; an unverifiable
// delivery is rejected without touching payment state.  Redeliveries of an
// already-applied event return 200 so the provider stops retrying.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	sig := c.Request().Header.Get("X-Webhook-Signature")
	if sig == "" || !utils.VerifySignature(h.Cfg.WebhookSecret, body, sig) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	status, actionable := webhookSignals[ev.Type]
	if !actionable {
		log.Printf("webhook: ignoring event type %q", ev.Type)
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}
	if ev.Data.TicketCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket_code required"})
	}
	// A succeeded envelope must carry a succeeded payload status; only the
	// agreeing pair may mark the ticket paid.
	if status == service.SignalSucceeded && ev.Data.Status != service.SignalSucceeded {
		log.Printf("webhook: event %q for ticket %s carries status %q, not applying",
			ev.Type, ev.Data.TicketCode, ev.Data.Status)
		return c.JSON(http.StatusOK, echo.Map{
			"received":       true,
			"payment_status": service.OutcomeDeclined.String(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	outcome, err := h.Recon.Apply(ctx, service.Signal{
		TicketCode:  ev.Data.TicketCode,
		ProviderRef: ev.Data.PaymentRef,
		Status:      status,
	})
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply signal failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true, "payment_status": outcome.String()})
}

// Return handles the customer's browser coming back from the payment page.
// The redirect may arrive before or after the webhook, more than once, or
// with its query parameters stripped; the reconciler absorbs all of that.
func (h *PaymentHandler) Return(c echo.Context) error {
	sig := service.Signal{
		TicketCode:  c.Param("code"),
		ProviderRef: c.QueryParam("payment_intent"),
		Lang:        i18n.DetectLanguage(c.Request().Header.Get("Accept-Language")),
	}
	switch c.QueryParam("redirect_status") {
	case "succeeded":
		sig.Status = service.SignalSucceeded
	case "failed":
		sig.Status = service.SignalFailed
	case "canceled":
		sig.Status = service.SignalCanceled
	default:
		// Lost or mangled redirect parameters; the reconciler asks the
		// provider what actually happened.
		sig.Status = service.SignalUnknown
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	outcome, err := h.Recon.Apply(ctx, sig)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "apply signal failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket_code":    sig.TicketCode,
		"payment_status": outcome.String(),
	})
}
