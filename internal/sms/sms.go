// Package sms sends text messages through the GatewayAPI REST endpoint.
// When no API token is configured the client runs in simulation mode and
// logs the message instead, which keeps development environments working
// without a gateway account.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const gatewayEndpoint = "https://gatewayapi.eu/rest/mtsms"

// gsmBasic is the GSM 03.38 basic character set.  Messages outside it must
// be sent as UCS2, which halves the per-segment capacity and costs more.
const gsmBasic = "@£$¥èéùìòÇ\nØø\rÅåΔ_ΦΓΛΩΠΨΣΘΞÆæßÉ !\"#¤%&'()*+,-./0123456789:;<=>?" +
	"¡ABCDEFGHIJKLMNOPQRSTUVWXYZÄÖÑÜ§¿abcdefghijklmnopqrstuvwxyzäöñüà"

const gsmExtended = "^{}\\[~]|€"

// Client talks to the SMS gateway.  A zero Token enables simulation mode.
type Client struct {
	Token  string
	Sender string // sender name shown on the handset, max 11 chars
	HTTP   *http.Client
}

// New returns a Client with a bounded-timeout HTTP client.
func New(token, sender string) *Client {
	if sender == "" {
		sender = "SKK Ticket"
	}
	return &Client{
		Token:  token,
		Sender: sender,
		HTTP:   &http.Client{Timeout: 30 * time.Second},
	}
}

// DetectEncoding returns the cheapest encoding able to carry the message:
// GSM0338 when every rune fits the GSM 7-bit tables, UCS2 otherwise.
func DetectEncoding(message string) string {
	basic := map[rune]bool{}
	for _, r := range gsmBasic {
		basic[r] = true
	}
	for _, r := range gsmExtended {
		basic[r] = true
	}
	for _, r := range message {
		if !basic[r] {
			return "UCS2"
		}
	}
	return "GSM0338"
}

type recipient struct {
	MSISDN string `json:"msisdn"`
}

type sendRequest struct {
	Sender     string      `json:"sender"`
	Message    string      `json:"message"`
	Recipients []recipient `json:"recipients"`
	Encoding   string      `json:"encoding,omitempty"`
}

// Send delivers one message to a country-coded phone number.  Delivery is
// best effort; callers log failures but never let them affect ticket state.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	encoding := DetectEncoding(message)
	if c.Token == "" {
		log.Printf("sms: simulation mode, to=%s encoding=%s len=%d message=%q",
			phone, encoding, len([]rune(message)), message)
		return nil
	}

	req := sendRequest{
		Sender:     c.Sender,
		Message:    message,
		Recipients: []recipient{{MSISDN: phone}},
	}
	// GSM-7 is the gateway default; only UCS2 needs to be explicit.
	if encoding == "UCS2" {
		req.Encoding = "UCS2"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, gatewayEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.Token, "")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms send: gateway returned %d", resp.StatusCode)
	}
	return nil
}
