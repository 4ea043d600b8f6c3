package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skate-ticket-service/internal/config"
	"github.com/iliyamo/skate-ticket-service/internal/model"
	"github.com/iliyamo/skate-ticket-service/internal/repository"
	"github.com/iliyamo/skate-ticket-service/internal/service"
	"github.com/iliyamo/skate-ticket-service/internal/utils"
)

const testWebhookSecret = "whsec_test"

// fakeStore holds one ticket and honors the unpaid guard on MarkPaid.
type fakeStore struct {
	ticket model.Ticket
}

func (s *fakeStore) GetByCode(_ context.Context, code string) (model.Ticket, error) {
	if code != s.ticket.Code {
		return model.Ticket{}, repository.ErrTicketNotFound
	}
	return s.ticket, nil
}

func (s *fakeStore) MarkPaid(_ context.Context, code, providerRef string) error {
	if code != s.ticket.Code {
		return repository.ErrTicketNotFound
	}
	if s.ticket.Status != model.StatusUnpaid {
		return repository.ErrInvalidTransition
	}
	s.ticket.Status = model.StatusPaid
	if providerRef != "" {
		ref := providerRef
		s.ticket.PaymentRef = &ref
	}
	return nil
}

var errNotUsed = errors.New("not used")

func (s *fakeStore) Create(context.Context, *model.Ticket) error { return errNotUsed }
func (s *fakeStore) GetByID(context.Context, uint64) (model.Ticket, error) {
	return model.Ticket{}, errNotUsed
}
func (s *fakeStore) SetPaymentRef(context.Context, string, string) error     { return errNotUsed }
func (s *fakeStore) Claim(context.Context, uint64, uint64) error             { return errNotUsed }
func (s *fakeStore) PromoteUnpaid(context.Context, uint64) error             { return errNotUsed }
func (s *fakeStore) UnclaimInProgress(context.Context, uint64, uint64) error { return errNotUsed }
func (s *fakeStore) DemoteUnclaimedPaid(context.Context, uint64) error       { return errNotUsed }
func (s *fakeStore) Complete(context.Context, uint64, uint64) error          { return errNotUsed }
func (s *fakeStore) Cancel(context.Context, uint64, uint64) error            { return errNotUsed }

type fakeProvider struct{ intent service.Intent }

func (p *fakeProvider) CreateIntent(context.Context, model.Ticket) (service.Intent, error) {
	return p.intent, nil
}
func (p *fakeProvider) GetIntent(context.Context, string) (service.Intent, error) {
	return p.intent, nil
}
func (p *fakeProvider) Reusable(status string) bool { return status == "requires_confirmation" }

func newWebhookTest(store *fakeStore) (*echo.Echo, *PaymentHandler) {
	cfg := config.Config{WebhookSecret: testWebhookSecret}
	rec := &service.Reconciler{Store: store, Provider: &fakeProvider{}}
	return echo.New(), NewPaymentHandler(cfg, rec)
}

func postWebhook(e *echo.Echo, h *PaymentHandler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	_ = h.Webhook(c)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := &fakeStore{ticket: model.Ticket{Code: "CEFHJ", Status: model.StatusUnpaid}}
	e, h := newWebhookTest(store)
	body := `{"type":"payment_succeeded","data":{"ticket_code":"CEFHJ","payment_ref":"pi_1","status":"succeeded"}}`

	for name, sig := range map[string]string{
		"missing":      "",
		"wrong secret": utils.SignPayload("whsec_other", []byte(body)),
		"garbage":      "deadbeef",
	} {
		w := postWebhook(e, h, body, sig)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s signature: status = %d, want 401", name, w.Code)
		}
	}
	if store.ticket.Status != model.StatusUnpaid {
		t.Error("unverified delivery changed payment state")
	}
}

func TestWebhookAppliesSucceededEvent(t *testing.T) {
	store := &fakeStore{ticket: model.Ticket{Code: "CEFHJ", Status: model.StatusUnpaid, PriceDKK: 150}}
	e, h := newWebhookTest(store)
	body := `{"type":"payment_succeeded","data":{"ticket_code":"CEFHJ","payment_ref":"pi_1","status":"succeeded"}}`

	w := postWebhook(e, h, body, utils.SignPayload(testWebhookSecret, []byte(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	if store.ticket.Status != model.StatusPaid {
		t.Errorf("ticket status = %q, want paid", store.ticket.Status)
	}

	// Redelivery acknowledges without error so the provider stops retrying.
	w = postWebhook(e, h, body, utils.SignPayload(testWebhookSecret, []byte(body)))
	if w.Code != http.StatusOK {
		t.Errorf("redelivery status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already_paid") {
		t.Errorf("redelivery body %q missing already_paid", w.Body)
	}
}

// A succeeded envelope whose payload status disagrees must not pay the
// ticket; only the agreeing pair does.
func TestWebhookSucceededEventWithMismatchedStatus(t *testing.T) {
	store := &fakeStore{ticket: model.Ticket{Code: "CEFHJ", Status: model.StatusUnpaid, PriceDKK: 150}}
	e, h := newWebhookTest(store)

	for _, status := range []string{"failed", "canceled", ""} {
		body := `{"type":"payment_succeeded","data":{"ticket_code":"CEFHJ","payment_ref":"pi_1","status":"` + status + `"}}`
		w := postWebhook(e, h, body, utils.SignPayload(testWebhookSecret, []byte(body)))
		if w.Code != http.StatusOK {
			t.Errorf("status %q: http status = %d, want 200", status, w.Code)
		}
		if !strings.Contains(w.Body.String(), "declined") {
			t.Errorf("status %q: body %q missing declined", status, w.Body)
		}
	}
	if store.ticket.Status != model.StatusUnpaid {
		t.Errorf("mismatched delivery paid the ticket: status = %q", store.ticket.Status)
	}
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	store := &fakeStore{ticket: model.Ticket{Code: "CEFHJ", Status: model.StatusUnpaid}}
	e, h := newWebhookTest(store)
	body := `{"type":"payout.settled","data":{}}`

	w := postWebhook(e, h, body, utils.SignPayload(testWebhookSecret, []byte(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if store.ticket.Status != model.StatusUnpaid {
		t.Error("unhandled event type changed payment state")
	}
}

func TestWebhookUnknownTicket(t *testing.T) {
	store := &fakeStore{ticket: model.Ticket{Code: "CEFHJ", Status: model.StatusUnpaid}}
	e, h := newWebhookTest(store)
	body := `{"type":"payment_succeeded","data":{"ticket_code":"ZZZZZ","payment_ref":"pi_1","status":"succeeded"}}`

	w := postWebhook(e, h, body, utils.SignPayload(testWebhookSecret, []byte(body)))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
