package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		name  string
		retry int
		want  time.Duration
	}{
		{"Negative Retry", -1, 1 * time.Second},
		{"First Retry", 0, 1 * time.Second},
		{"Second Retry", 1, 2 * time.Second},
		{"Fifth Retry", 4, 16 * time.Second},
		{"Capped", 10, 60 * time.Second},
		{"Huge Retry Capped", 63, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateBackoff(tt.retry); got != tt.want {
				t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.retry, got, tt.want)
			}
		})
	}
}
