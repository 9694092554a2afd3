package common

import (
	"testing"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		input      string
		wantCode   string
		wantString string
		wantValid  bool
	}{
		// Suffixed format
		{"PETR4.SA", "PETR4", "PETR4.SA", true},
		{"TAEE11.SA", "TAEE11", "TAEE11.SA", true},

		// Bare codes get the suffix
		{"VALE3", "VALE3", "VALE3.SA", true},

		// Exchange-qualified format
		{"B3:ITUB4", "ITUB4", "ITUB4.SA", true},
		{"bvmf:bbdc4", "BBDC4", "BBDC4.SA", true},

		// Case normalization
		{"petr4.sa", "PETR4", "PETR4.SA", true},
		{"abev3", "ABEV3", "ABEV3.SA", true},

		// Whitespace handling
		{"  PETR4  ", "PETR4", "PETR4.SA", true},

		// Invalid shapes
		{"AB1", "AB1", "AB1.SA", false},
		{"PETR4567", "PETR4567", "PETR4567.SA", false},
		{"12AB3", "12AB3", "12AB3.SA", false},

		// Empty input
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseTicker(tt.input)

			if result.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", result.Code, tt.wantCode)
			}
			if result.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", result.String(), tt.wantString)
			}
			if result.EODHDSymbol() != tt.wantString {
				t.Errorf("EODHDSymbol() = %q, want %q", result.EODHDSymbol(), tt.wantString)
			}
			if result.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", result.Valid(), tt.wantValid)
			}
		})
	}
}

func TestValidateTicker(t *testing.T) {
	got, err := ValidateTicker("wege3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "WEGE3.SA" {
		t.Errorf("ValidateTicker = %q, want WEGE3.SA", got)
	}

	for _, bad := range []string{"", "  ", "X1", "1234.SA"} {
		if _, err := ValidateTicker(bad); err == nil {
			t.Errorf("ValidateTicker(%q) should fail", bad)
		}
	}
}

func TestParseTickers(t *testing.T) {
	got := ParseTickers([]string{"petr4", "", "VALE3.SA", "petr4.sa"})
	want := []string{"PETR4.SA", "VALE3.SA", "PETR4.SA"}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
