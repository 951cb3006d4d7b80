package domain

import (
	"strings"
	"testing"
)

func TestNormalizeDomainName_Valid(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"shop.example.com", "shop.example.com"},
		{"a.co", "a.co"},
		{"UPPER.COM", "upper.com"},
		{"  Shop.Example.com  ", "shop.example.com"},
		{"my-store.example.io", "my-store.example.io"},
	}
	for _, tt := range tests {
		got, err := NormalizeDomainName(tt.raw)
		if err != nil {
			t.Errorf("NormalizeDomainName(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeDomainName(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeDomainName_Invalid(t *testing.T) {
	longLabel := strings.Repeat("a", 64) + ".com"

	tests := []string{
		"",
		"nodots",
		"example.c",
		"-leading.example.com",
		"trailing-.example.com",
		longLabel,
		"exa mple.com",
		"example..com",
		"example.com/path",
		"http://example.com",
	}
	for _, raw := range tests {
		if _, err := NormalizeDomainName(raw); err != ErrInvalidDomainName {
			t.Errorf("NormalizeDomainName(%q): expected ErrInvalidDomainName, got %v", raw, err)
		}
	}
}

func TestNormalizeDomainName_MaxLabelLength(t *testing.T) {
	// 63-char labels are the longest the grammar accepts.
	label := strings.Repeat("a", 63)
	if _, err := NormalizeDomainName(label + ".com"); err != nil {
		t.Errorf("63-char label rejected: %v", err)
	}
}
