package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

// deadProviderURL returns a base URL whose port refuses connections.
func deadProviderURL() string {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	return srv.URL
}

func TestCreateIntentSimulationMode(t *testing.T) {
	p := NewHTTPProvider("")

	intent, err := p.CreateIntent(context.Background(), model.Ticket{Code: "CEFHJ", PriceDKK: 150})
	if err != nil {
		t.Fatalf("CreateIntent: %v", err)
	}
	if !strings.HasPrefix(intent.Ref, "pi_simulation_") {
		t.Errorf("ref = %q, want a simulation reference", intent.Ref)
	}
	if !p.Reusable(intent.Status) {
		t.Errorf("simulation intent status %q not reusable", intent.Status)
	}
}

// With a key configured, a provider outage is an error, never a fabricated
// reference: a simulation ref stored in production would resolve to
// succeeded later and pay the ticket without money changing hands.
func TestCreateIntentProviderDown(t *testing.T) {
	p := NewHTTPProvider("sk_test_123")
	p.BaseURL = deadProviderURL()

	_, err := p.CreateIntent(context.Background(), model.Ticket{Code: "CEFHJ", PriceDKK: 150})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestCreateIntentProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider("sk_test_123")
	p.BaseURL = srv.URL

	_, err := p.CreateIntent(context.Background(), model.Ticket{Code: "CEFHJ", PriceDKK: 150})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("err = %v, want ErrProviderUnavailable", err)
	}
}

// The simulation short-circuit in GetIntent only exists without a key.
// In production a simulation-shaped reference is an unknown id like any
// other and must not auto-report success.
func TestGetIntentSimulationRefGatedOnKey(t *testing.T) {
	dev := NewHTTPProvider("")
	intent, err := dev.GetIntent(context.Background(), "pi_simulation_CEFHJ")
	if err != nil {
		t.Fatalf("simulation mode GetIntent: %v", err)
	}
	if intent.Status != SignalSucceeded {
		t.Errorf("simulation mode status = %q, want succeeded", intent.Status)
	}

	prod := NewHTTPProvider("sk_test_123")
	prod.BaseURL = deadProviderURL()
	if _, err := prod.GetIntent(context.Background(), "pi_simulation_CEFHJ"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("production mode GetIntent: err = %v, want ErrProviderUnavailable", err)
	}
}

// A provider outage while the customer opens the pay page must leave the
// ticket fully payable and unknowable, never paid: no stored reference,
// and a later parameterless return visit stays unknown.
func TestProviderOutageNeverPaysTicket(t *testing.T) {
	store := newMemStore()
	disp := &recordingDispatcher{}
	provider := NewHTTPProvider("sk_test_123")
	provider.BaseURL = deadProviderURL()
	rec := newTestReconciler(store, provider, disp)
	ticket := seedUnpaid(store, "OUTGE")

	if _, err := rec.EnsureIntent(context.Background(), ticket); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("EnsureIntent: err = %v, want ErrProviderUnavailable", err)
	}
	got, _ := store.GetByCode(context.Background(), "OUTGE")
	if got.PaymentRef != nil {
		t.Fatalf("outage stored payment reference %q", *got.PaymentRef)
	}

	out, err := rec.Apply(context.Background(), Signal{TicketCode: "OUTGE", Status: SignalUnknown})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out != OutcomeUnknown {
		t.Errorf("outcome = %v, want OutcomeUnknown", out)
	}
	got, _ = store.GetByCode(context.Background(), "OUTGE")
	if got.Status != model.StatusUnpaid {
		t.Errorf("status = %q, want unpaid", got.Status)
	}
	if len(disp.events) != 0 {
		t.Errorf("published %d events, want 0", len(disp.events))
	}
}
