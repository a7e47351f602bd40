package policy

import "testing"

func TestAllowed(t *testing.T) {
	t.Parallel()

	if !Allowed("60532") {
		t.Fatal("60532 should be in the service area")
	}
	if Allowed("99999") {
		t.Fatal("99999 should not be in the service area")
	}
	if Allowed("") {
		t.Fatal("empty zip should never be allowed")
	}
	// No normalization: whitespace or partial codes don't match.
	if Allowed(" 60532") || Allowed("6053") {
		t.Fatal("membership must be an exact string match")
	}
}

// TestAllowedZipCodesAreFiveDigits guards the hand-maintained list against typos.
func TestAllowedZipCodesAreFiveDigits(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, z := range AllowedZipCodes {
		if len(z) != 5 {
			t.Errorf("zip %q is not 5 digits", z)
		}
		for _, r := range z {
			if r < '0' || r > '9' {
				t.Errorf("zip %q contains a non-digit", z)
			}
		}
		if seen[z] {
			t.Errorf("zip %q listed twice", z)
		}
		seen[z] = true
	}
}
