package sms

import (
	"context"
	"testing"
)

func TestDetectEncoding(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"Your skates are ready! Ticket CEFHJ", "GSM0338"},
		{"Pris: 150 kr. Betal her: https://skk.example/pay/CEFHJ", "GSM0338"},
		{"Hej Søren, dine skøjter er klar", "GSM0338"}, // æøå are all in GSM 03.38
		{"Vi ses snart…", "UCS2"},                      // typographic ellipsis is not
		{"Price: 20 € {ok}", "GSM0338"},                // extended table characters
		{"Emoji \U0001F6FC", "UCS2"},
		{"", "GSM0338"},
	}
	for _, tc := range cases {
		if got := DetectEncoding(tc.message); got != tc.want {
			t.Errorf("DetectEncoding(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestSendSimulationMode(t *testing.T) {
	c := New("", "")
	if c.Sender != "SKK Ticket" {
		t.Errorf("default sender = %q", c.Sender)
	}
	if err := c.Send(context.Background(), "4522334455", "test message"); err != nil {
		t.Fatalf("simulation send: %v", err)
	}
}
