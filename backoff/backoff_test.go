package backoff

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/use-agent/distill/models"
)

func TestDelay_Schedule(t *testing.T) {
	p := Default()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second}, // 1s, clamped to floor
		{2, 10 * time.Second}, // 2s, clamped to floor
		{3, 10 * time.Second}, // 4s, clamped to floor
		{4, 10 * time.Second}, // 8s, clamped to floor
		{5, 16 * time.Second},
		{6, 32 * time.Second},
		{10, 512 * time.Second},
		{11, 600 * time.Second}, // 1024s, clamped to ceiling
		{50, 600 * time.Second},
	}
	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestDelay_NonDecreasingWithinBounds(t *testing.T) {
	p := Default()

	prev := time.Duration(0)
	for attempt := 1; attempt < p.MaxAttempts; attempt++ {
		d := p.Delay(attempt)
		if d < p.Floor || d > p.Ceil {
			t.Errorf("Delay(%d) = %v, outside [%v, %v]", attempt, d, p.Floor, p.Ceil)
		}
		if d < prev {
			t.Errorf("Delay(%d) = %v decreased from %v", attempt, d, prev)
		}
		prev = d
	}
}

func TestDelay_OversizedAttemptDoesNotOverflow(t *testing.T) {
	p := Default()
	if d := p.Delay(1000); d != p.Ceil {
		t.Errorf("Delay(1000) = %v, want ceiling %v", d, p.Ceil)
	}
}

func TestRetryable(t *testing.T) {
	p := Default()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", models.NewScrapeError(models.ErrCodeRateLimited, "429", nil), true},
		{"wrapped rate limited", fmt.Errorf("attempt 3: %w", models.NewScrapeError(models.ErrCodeRateLimited, "429", nil)), true},
		{"request failed", models.NewScrapeError(models.ErrCodeRequestFailed, "503", nil), false},
		{"parse failed", models.NewScrapeError(models.ErrCodeParseFailed, "bad html", nil), false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := p.Retryable(tt.err); got != tt.want {
			t.Errorf("%s: Retryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
