package handlers

import "testing"

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{"RECEIVED", "PREPARING", true},
		{"RECEIVED", "CANCELLED", true},
		{"RECEIVED", "READY", false},
		{"PREPARING", "READY", true},
		{"PREPARING", "COMPLETED", false},
		{"READY", "COMPLETED", true},
		{"READY", "CANCELLED", true},
		{"COMPLETED", "CANCELLED", false},
		{"CANCELLED", "RECEIVED", false},
		{"RECEIVED", "RECEIVED", false},
	}

	for _, tt := range tests {
		if got := validTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("validTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
