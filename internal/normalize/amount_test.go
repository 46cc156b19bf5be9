package normalize

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"-$12.50", -12.5, true},
		{"$1,204.00", 1204.0, true},
		{"$2,000.00", 2000.0, true},
		{"25.99", 25.99, true},
		{"£1,234,567.89", 1234567.89, true},
		{"0.00", 0.0, true},
		{" $4.50 ", 4.5, true},
		// Dash-variant debits.
		{"−$3.00", -3.0, true}, // Unicode minus
		{"–$3.00", -3.0, true}, // en dash
		{"—$3.00", -3.0, true}, // em dash
		// No digits: rejected.
		{"", 0, false},
		{"$", 0, false},
		{"Pending", 0, false},
		{"—", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q): ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("ParseAmount(%q): got %f, want %f", tt.input, got, tt.expected)
			}
		})
	}
}
