package repository

import (
	"testing"
	"time"

	"github.com/iliyamo/skate-ticket-service/internal/model"
)

func TestExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		inv  model.Invitation
		want bool
	}{
		{"fresh", model.Invitation{ExpiresAt: now.Add(24 * time.Hour)}, false},
		{"past expiry", model.Invitation{ExpiresAt: now.Add(-time.Minute)}, true},
		{"used", model.Invitation{Used: true, ExpiresAt: now.Add(24 * time.Hour)}, true},
		{"exactly at expiry", model.Invitation{ExpiresAt: now}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expired(tc.inv, now); got != tc.want {
				t.Errorf("Expired = %v, want %v", got, tc.want)
			}
		})
	}
}
