package resilience

import (
	"testing"
	"time"
)

func TestConfigForCollaborators(t *testing.T) {
	cases := []struct {
		collaborator Collaborator
		attempts     int
		openTimeout  time.Duration
	}{
		{CollaboratorEmbed, 3, 30 * time.Second},
		{CollaboratorQdrant, 3, 15 * time.Second},
		{CollaboratorGenerate, 1, 60 * time.Second},
		{CollaboratorTranslate, 1, 30 * time.Second},
		{Collaborator("unknown"), 3, 30 * time.Second},
	}
	for _, tc := range cases {
		t.Run(string(tc.collaborator), func(t *testing.T) {
			cfg := ConfigFor(tc.collaborator).normalize()
			if cfg.RetryMaxAttempts != tc.attempts {
				t.Fatalf("attempts = %d, want %d", cfg.RetryMaxAttempts, tc.attempts)
			}
			if cfg.BreakerOpenTimeout != tc.openTimeout {
				t.Fatalf("open timeout = %s, want %s", cfg.BreakerOpenTimeout, tc.openTimeout)
			}
			if !cfg.BreakerEnabled {
				t.Fatalf("breaker must be enabled")
			}
		})
	}
}

func TestGenerateBreakerTripsSoonerThanEmbed(t *testing.T) {
	gen := ConfigFor(CollaboratorGenerate)
	embed := ConfigFor(CollaboratorEmbed)
	if gen.BreakerMinRequests >= embed.BreakerMinRequests {
		t.Fatalf("generate min requests %d should be below embed %d", gen.BreakerMinRequests, embed.BreakerMinRequests)
	}
	if gen.BreakerHalfOpenMaxCalls != 1 {
		t.Fatalf("generate should probe with a single call, got %d", gen.BreakerHalfOpenMaxCalls)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := Config{RetryInitialBackoff: time.Second, BreakerFailureRatio: 2}.normalize()
	def := ConfigFor(CollaboratorEmbed)

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts || cfg.BreakerMinRequests != def.BreakerMinRequests {
		t.Fatalf("zero fields not defaulted: %+v", cfg)
	}
	if cfg.RetryMaxBackoff != time.Second {
		t.Fatalf("max backoff should be raised to initial backoff, got %s", cfg.RetryMaxBackoff)
	}
	if cfg.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("out-of-range ratio not reset: %v", cfg.BreakerFailureRatio)
	}
}
