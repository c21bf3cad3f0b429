package store

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		to    string
		from  string
		valid bool
	}{
		{"in_progress", "open", true},
		{"in_progress", "resolved", true},
		{"in_progress", "closed", false},
		{"resolved", "in_progress", true},
		{"resolved", "open", false},
		{"closed", "resolved", true},
		{"closed", "in_progress", false},
		{"canceled", "open", true},
		{"canceled", "in_progress", false},
		{"canceled", "resolved", false},
		{"open", "in_progress", true},
		{"open", "closed", false},
		{"unknown", "open", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.to, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.to, tt.from, got, tt.valid)
		}
	}
}
