package discovery

import "testing"

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone("9876543210", "+91"); got != "+919876543210" {
		t.Fatalf("bare local number: got %q", got)
	}
	if got := NormalizePhone("+14155552671", "+91"); got != "+14155552671" {
		t.Fatalf("already prefixed number must pass through: got %q", got)
	}
	if got := NormalizePhone("09876543210", "+91"); got != "+919876543210" {
		t.Fatalf("leading zero must be stripped before prefixing: got %q", got)
	}
	if got := NormalizePhone("98765-43210", "+91"); got != "+919876543210" {
		t.Fatalf("separators must be stripped: got %q", got)
	}
	// Eleven digits without a plus is ambiguous and left untouched.
	if got := NormalizePhone("19876543210", "+91"); got != "19876543210" {
		t.Fatalf("ambiguous length must not be prefixed: got %q", got)
	}
	if got := NormalizePhone("", "+91"); got != "" {
		t.Fatalf("empty input: got %q", got)
	}
	// Empty prefix falls back to the package default.
	if got := NormalizePhone("9876543210", ""); got != "+919876543210" {
		t.Fatalf("default prefix fallback: got %q", got)
	}
}

func TestLocalNumber(t *testing.T) {
	if got := LocalNumber("+919876543210", "91"); got != "9876543210" {
		t.Fatalf("country code must be dropped: got %q", got)
	}
	if got := LocalNumber("9876543210", "91"); got != "9876543210" {
		t.Fatalf("ten-digit number passes through: got %q", got)
	}
	if got := LocalNumber("+9198765432109", "91"); got != "8765432109" {
		t.Fatalf("trailing ten digits expected: got %q", got)
	}
	if got := LocalNumber("12345", "91"); got != "12345" {
		t.Fatalf("short numbers pass through: got %q", got)
	}
	if got := LocalNumber("+919876543210", ""); got != "9876543210" {
		t.Fatalf("default country digits fallback: got %q", got)
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org", "x_y%z@sub.domain.io"}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Fatalf("expected %q to validate", email)
		}
	}

	invalid := []string{"", "plain", "@example.org", "user@", "user@host", "user@@x.com"}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Fatalf("expected %q to fail validation", email)
		}
	}
}
