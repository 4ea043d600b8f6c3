package utils

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"22334455", "4522334455"},        // bare Danish mobile gets the country code
		{"22 33 44 55", "4522334455"},     // spaces stripped
		{"+45 22 33 44 55", "4522334455"}, // already country-coded
		{"4522334455", "4522334455"},
		{"0045 22334455", "004522334455"}, // 00-prefix passes through as digits
		{"46701234567", "46701234567"},    // Swedish number untouched
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
