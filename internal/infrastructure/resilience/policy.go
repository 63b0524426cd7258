package resilience

import "time"

// Collaborator names an outbound dependency of the query path. Each one gets
// its own executor and breaker profile.
type Collaborator string

const (
	CollaboratorEmbed     Collaborator = "ollama_embed"
	CollaboratorGenerate  Collaborator = "ollama_generate"
	CollaboratorQdrant    Collaborator = "qdrant"
	CollaboratorTranslate Collaborator = "translate"
)

type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// ConfigFor returns the profile for a collaborator. Embedding and vector
// search are idempotent and retried; generation and translation run once
// under their own long timeouts. Unknown names get the embedding profile.
func ConfigFor(c Collaborator) Config {
	switch c {
	case CollaboratorQdrant:
		return Config{
			RetryMaxAttempts:        3,
			RetryInitialBackoff:     50 * time.Millisecond,
			RetryMaxBackoff:         200 * time.Millisecond,
			RetryMultiplier:         2,
			BreakerEnabled:          true,
			BreakerMinRequests:      10,
			BreakerFailureRatio:     0.5,
			BreakerOpenTimeout:      15 * time.Second,
			BreakerHalfOpenMaxCalls: 2,
		}
	case CollaboratorGenerate:
		return Config{
			RetryMaxAttempts:        1,
			BreakerEnabled:          true,
			BreakerMinRequests:      5,
			BreakerFailureRatio:     0.6,
			BreakerOpenTimeout:      60 * time.Second,
			BreakerHalfOpenMaxCalls: 1,
		}
	case CollaboratorTranslate:
		return Config{
			RetryMaxAttempts:        1,
			BreakerEnabled:          true,
			BreakerMinRequests:      5,
			BreakerFailureRatio:     0.5,
			BreakerOpenTimeout:      30 * time.Second,
			BreakerHalfOpenMaxCalls: 1,
		}
	default:
		return Config{
			RetryMaxAttempts:        3,
			RetryInitialBackoff:     100 * time.Millisecond,
			RetryMaxBackoff:         400 * time.Millisecond,
			RetryMultiplier:         2,
			BreakerEnabled:          true,
			BreakerMinRequests:      10,
			BreakerFailureRatio:     0.5,
			BreakerOpenTimeout:      30 * time.Second,
			BreakerHalfOpenMaxCalls: 2,
		}
	}
}

// SingleAttempt keeps the breaker settings and disables retries.
func (c Config) SingleAttempt() Config {
	out := c
	out.RetryMaxAttempts = 1
	return out
}

type number interface {
	~int | ~uint32 | ~int64 | ~float64
}

func positiveOr[T number](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}

// normalize fills unset fields from the embedding profile.
func (c Config) normalize() Config {
	def := ConfigFor(CollaboratorEmbed)
	out := c
	out.RetryMaxAttempts = positiveOr(out.RetryMaxAttempts, def.RetryMaxAttempts)
	out.RetryInitialBackoff = positiveOr(out.RetryInitialBackoff, def.RetryInitialBackoff)
	out.RetryMaxBackoff = max(positiveOr(out.RetryMaxBackoff, def.RetryMaxBackoff), out.RetryInitialBackoff)
	if out.RetryMultiplier < 1 {
		out.RetryMultiplier = def.RetryMultiplier
	}
	out.BreakerMinRequests = positiveOr(out.BreakerMinRequests, def.BreakerMinRequests)
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	out.BreakerOpenTimeout = positiveOr(out.BreakerOpenTimeout, def.BreakerOpenTimeout)
	out.BreakerHalfOpenMaxCalls = positiveOr(out.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)
	return out
}
