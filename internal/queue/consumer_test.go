package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iliyamo/skate-ticket-service/internal/i18n"
)

func testCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	dir := t.TempDir()
	en := `sms_ticket_created: "Hi %s! Ticket %s (%s %s, size %d). Pay: %s"
sms_ticket_created_free: "Hi %s! Ticket %s (%s %s, size %d). Confirm: %s"
sms_payment_confirmed: "Payment received for ticket %s."
sms_ready_for_pickup: "Ready! Ticket %s. Feedback: %s"
sms_ticket_cancelled: "Ticket %s cancelled."
`
	da := `sms_payment_confirmed: "Betaling modtaget for billet %s."
`
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(en), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "da.yaml"), []byte(da), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := i18n.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRenderSMS(t *testing.T) {
	messages := testCatalog(t)
	base := TicketEvent{
		TicketCode:   "CEFHJ",
		CustomerName: "Freja",
		Brand:        "Bauer",
		Color:        "black",
		Size:         42,
		PriceDKK:     150,
	}

	created := base
	created.Kind = EventTicketCreated
	created.PaymentURL = "https://skk.example/pay/CEFHJ"
	text, err := RenderSMS(messages, created)
	if err != nil {
		t.Fatalf("RenderSMS created: %v", err)
	}
	for _, want := range []string{"Freja", "CEFHJ", "Bauer", "size 42", "https://skk.example/pay/CEFHJ"} {
		if !strings.Contains(text, want) {
			t.Errorf("created SMS %q missing %q", text, want)
		}
	}

	free := created
	free.PriceDKK = 0
	free.PaymentURL = "https://skk.example/v1/tickets/CEFHJ/confirm"
	text, err = RenderSMS(messages, free)
	if err != nil {
		t.Fatalf("RenderSMS free: %v", err)
	}
	if !strings.Contains(text, "Confirm:") {
		t.Errorf("free SMS %q does not use the confirmation wording", text)
	}

	paid := base
	paid.Kind = EventTicketPaid
	paid.Lang = "da"
	text, err = RenderSMS(messages, paid)
	if err != nil {
		t.Fatalf("RenderSMS paid: %v", err)
	}
	if !strings.Contains(text, "Betaling modtaget") {
		t.Errorf("paid SMS %q not rendered in Danish", text)
	}

	done := base
	done.Kind = EventReadyForPickup
	done.FeedbackURL = "https://skk.example/feedback/CEFHJ"
	text, err = RenderSMS(messages, done)
	if err != nil {
		t.Fatalf("RenderSMS pickup: %v", err)
	}
	if !strings.Contains(text, "https://skk.example/feedback/CEFHJ") {
		t.Errorf("pickup SMS %q missing feedback link", text)
	}

	cancelled := base
	cancelled.Kind = EventTicketCancelled
	if _, err := RenderSMS(messages, cancelled); err != nil {
		t.Fatalf("RenderSMS cancelled: %v", err)
	}

	unknown := base
	unknown.Kind = "ticket.exploded"
	if _, err := RenderSMS(messages, unknown); err == nil {
		t.Error("RenderSMS accepted an unknown event kind")
	}
}
