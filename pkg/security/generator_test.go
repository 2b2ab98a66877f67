package security

import (
	"strings"
	"testing"
)

func TestRandomChar(t *testing.T) {
	tests := []struct {
		name  string
		chars string
		valid bool
	}{
		{"Valid string", "ABC123", true},
		{"Single character", "X", true},
		{"Empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			char, err := randomChar(tt.chars)

			if tt.valid {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				if !strings.ContainsRune(tt.chars, rune(char)) {
					t.Errorf("Character '%c' not found in source string '%s'", char, tt.chars)
				}
			} else if err == nil {
				t.Errorf("Expected error for empty string, got nil")
			}
		})
	}
}

func TestRandomCharDistribution(t *testing.T) {
	const iterations = 5000
	counts := make(map[byte]int)

	for i := 0; i < iterations; i++ {
		char, err := randomChar(numeric)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		counts[char]++
	}

	// Each digit should appear well above a third of its fair share.
	minExpected := iterations / len(numeric) / 3
	for _, d := range numeric {
		if counts[byte(d)] < minExpected {
			t.Errorf("Digit '%c' appeared only %d times (expected at least %d)", d, counts[byte(d)], minExpected)
		}
	}
}

func TestFromAlphabetRejectsNonPositiveLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := fromAlphabet(numeric, n); err == nil {
			t.Errorf("Expected error for length %d", n)
		}
	}
}

func TestGenerateNumericCode(t *testing.T) {
	if _, err := GenerateNumericCode(minCodeLength - 1); err == nil {
		t.Fatalf("Expected error for length %d", minCodeLength-1)
	}

	for i := 0; i < 50; i++ {
		code, err := GenerateNumericCode(6)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("Expected length 6, got %d", len(code))
		}
		for _, char := range code {
			if !strings.ContainsRune(numeric, char) {
				t.Fatalf("Unexpected character %q in %s", char, code)
			}
		}
	}
}

func TestGenerateReservationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenerateReservationCode()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.HasPrefix(code, reservationPrefix) || len(code) != len(reservationPrefix)+reservationLength {
			t.Fatalf("Unexpected code shape: %s", code)
		}
		if strings.ContainsAny(code[len(reservationPrefix):], "0O1I5S") {
			t.Fatalf("Ambiguous character in %s", code)
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("Too many collisions: %d unique of 100", len(seen))
	}
}

func BenchmarkGenerateReservationCode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateReservationCode(); err != nil {
			b.Fatalf("Unexpected error: %v", err)
		}
	}
}
