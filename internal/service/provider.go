package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

// ErrProviderUnavailable is returned when the provider's status API cannot
// be reached.  Callers degrade to "status unknown"; the signal stays
// retry-safe because the ticket was not touched.
var ErrProviderUnavailable = errors.New("payment provider unavailable")

// Intent is a provider-side payment attempt for one ticket.
type Intent struct {
	Ref          string // provider identifier, stored as the payment_ref
	ClientSecret string // handed to the browser payment widget
	Status       string
}

// ProviderClient talks to the external payment provider.
type ProviderClient interface {
	// CreateIntent registers a payment attempt for the ticket's stamped price.
	CreateIntent(ctx context.Context, t model.Ticket) (Intent, error)
	// GetIntent fetches the current state of an intent.  Returns
	// ErrProviderUnavailable when the provider cannot be queried.
	GetIntent(ctx context.Context, ref string) (Intent, error)
	// Reusable reports whether an intent status still accepts payment.
	Reusable(status string) bool
}

const simulationPrefix = "pi_simulation_"

// HTTPProvider implements ProviderClient against the provider's REST API.
// With an empty SecretKey it runs in simulation mode: intents are fake,
// always reusable and always succeeded, mirroring how development
// environments run without provider credentials.
type HTTPProvider struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

// NewHTTPProvider returns a provider client with bounded request timeouts.
func NewHTTPProvider(secretKey string) *HTTPProvider {
	return &HTTPProvider{
		SecretKey: secretKey,
		BaseURL:   "https://api.stripe.com/v1",
		HTTP:      &http.Client{Timeout: 10 * time.Second},
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreateIntent registers a payment intent denominated in øre (the minor
// unit) for the ticket's whole-DKK price.  Provider failures surface as
// ErrProviderUnavailable; simulation references exist only when no key is
// configured, because GetIntent reports them as succeeded and a fake
// reference minted in production would later mark the ticket paid.
func (p *HTTPProvider) CreateIntent(ctx context.Context, t model.Ticket) (Intent, error) {
	if p.SecretKey == "" {
		log.Printf("payment: simulation mode, fake intent for ticket %s", t.Code)
		return Intent{Ref: simulationPrefix + t.Code, Status: "requires_confirmation"}, nil
	}

	form := url.Values{}
	form.Set("amount", strconv.Itoa(t.PriceDKK*100)) // DKK -> øre
	form.Set("currency", "dkk")
	form.Set("payment_method_types[]", "mobilepay")
	form.Set("metadata[ticket_code]", t.Code)
	form.Set("description", "Skate sharpening - Ticket "+t.Code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Intent{}, fmt.Errorf("%w: create intent returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var ir intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	return Intent{Ref: ir.ID, ClientSecret: ir.ClientSecret, Status: ir.Status}, nil
}

// GetIntent queries the provider for the intent's current state.  The
// simulation short-circuit applies only without a configured key; in
// production a simulation-shaped reference is unknown like any other and
// goes to the provider, which will not recognize it.
func (p *HTTPProvider) GetIntent(ctx context.Context, ref string) (Intent, error) {
	if p.SecretKey == "" {
		if strings.HasPrefix(ref, simulationPrefix) {
			return Intent{Ref: ref, Status: SignalSucceeded}, nil
		}
		return Intent{}, ErrProviderUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.BaseURL+"/payment_intents/"+url.PathEscape(ref), nil)
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Intent{}, fmt.Errorf("%w: status query returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var ir intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return Intent{Ref: ir.ID, ClientSecret: ir.ClientSecret, Status: ir.Status}, nil
}

// Reusable reports whether an intent can still be paid by the customer.
func (p *HTTPProvider) Reusable(status string) bool {
	return status == "requires_confirmation" || status == "requires_action" ||
		status == "requires_payment_method"
}
