package utils

import (
	"strings"
	"testing"
)

func TestGenerateTicketCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateTicketCode()
		if err != nil {
			t.Fatalf("GenerateTicketCode: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), CodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(CodeAlphabet, r) {
				t.Errorf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}

func TestCodeAlphabetExcludesConfusableGlyphs(t *testing.T) {
	for _, r := range "0O1ILDB8S5Z2G6" {
		if strings.ContainsRune(CodeAlphabet, r) {
			t.Errorf("alphabet contains confusable glyph %q", r)
		}
	}
}

func TestGenerateCodeUsesWholeAlphabet(t *testing.T) {
	// With 2000 draws over 20 characters, a missing character means the
	// generator is biased, not unlucky.
	seen := map[rune]bool{}
	for i := 0; i < 400; i++ {
		code, err := GenerateCode(CodeAlphabet, CodeLength)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		for _, r := range code {
			seen[r] = true
		}
	}
	for _, r := range CodeAlphabet {
		if !seen[r] {
			t.Errorf("character %q never drawn", r)
		}
	}
}
