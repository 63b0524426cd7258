package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

func fastRetryConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(fastRetryConfig(), nil)

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{
			Retryable:     errors.Is(err, errTemp),
			RecordFailure: true,
		}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(fastRetryConfig(), nil)

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestSingleAttemptDisablesRetries(t *testing.T) {
	exec := NewExecutor(fastRetryConfig().SingleAttempt(), nil)

	attempts := 0
	_ = exec.Execute(context.Background(), "generate", func(context.Context) error {
		attempts++
		return &HTTPStatusError{StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
	}, ClassifyHTTPError)
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, nil)

	var transitions []string
	exec.OnStateChange(func(operation, from, to string) {
		transitions = append(transitions, fmt.Sprintf("%s:%s->%s", operation, from, to))
	})

	errTemp := errors.New("temporary")
	classifier := func(error) ErrorClassification {
		return ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errTemp
		}, classifier)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classifier)
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if got := exec.State("op"); got != gobreaker.StateOpen.String() {
		t.Fatalf("expected open state, got %s", got)
	}
	if len(transitions) != 1 || transitions[0] != "op:closed->open" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
	if got := exec.State("never-ran"); got != gobreaker.StateClosed.String() {
		t.Fatalf("expected closed for unknown operation, got %s", got)
	}
}

func TestStateReportsHalfOpenAfterTimeout(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		BreakerEnabled:          true,
		BreakerMinRequests:      1,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      10 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, nil)

	transitions := make(chan string, 4)
	exec.OnStateChange(func(operation, from, to string) {
		transitions <- from + "->" + to
	})

	_ = exec.Execute(context.Background(), "translate", func(context.Context) error {
		return errors.New("connection refused")
	}, func(error) ErrorClassification { return ErrorClassification{RecordFailure: true} })
	if got := <-transitions; got != "closed->open" {
		t.Fatalf("unexpected first transition %s", got)
	}

	time.Sleep(30 * time.Millisecond)

	state := make(chan string, 1)
	go func() { state <- exec.State("translate") }()
	select {
	case got := <-state:
		if got != gobreaker.StateHalfOpen.String() {
			t.Fatalf("expected half-open, got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("State blocked while the breaker transitioned")
	}
	if got := <-transitions; got != "open->half-open" {
		t.Fatalf("unexpected second transition %s", got)
	}
}

func TestCallReturnsValue(t *testing.T) {
	exec := NewExecutor(fastRetryConfig(), nil)

	got, err := Call(context.Background(), exec, "embed", func(context.Context) ([]float32, error) {
		return []float32{1, 2}, nil
	}, ClassifyHTTPError)
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected result %v %v", got, err)
	}

	got, err = Call(context.Background(), nil, "embed", func(context.Context) ([]float32, error) {
		return []float32{3}, nil
	}, nil)
	if err != nil || len(got) != 1 {
		t.Fatalf("nil executor should call through, got %v %v", got, err)
	}
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
		wantRecord    bool
	}{
		{name: "deadline", err: context.DeadlineExceeded, wantRetryable: false, wantRecord: false},
		{name: "503", err: &HTTPStatusError{StatusCode: 503}, wantRetryable: true, wantRecord: true},
		{name: "429", err: &HTTPStatusError{StatusCode: 429}, wantRetryable: true, wantRecord: true},
		{name: "400", err: &HTTPStatusError{StatusCode: 400}, wantRetryable: false, wantRecord: false},
		{name: "open breaker", err: gobreaker.ErrOpenState, wantRetryable: true, wantRecord: true},
		{name: "other", err: errors.New("decode"), wantRetryable: false, wantRecord: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class := ClassifyHTTPError(fmt.Errorf("wrapped: %w", tt.err))
			if class.Retryable != tt.wantRetryable || class.RecordFailure != tt.wantRecord {
				t.Fatalf("ClassifyHTTPError() = %+v", class)
			}
		})
	}
}

func TestWrapTemporary(t *testing.T) {
	if err := WrapTemporary("ollama generate", gobreaker.ErrOpenState); !domain.IsKind(err, domain.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if err := WrapTemporary("ollama generate", &HTTPStatusError{StatusCode: 502}); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary, got %v", err)
	}
	plain := errors.New("bad request")
	if err := WrapTemporary("ollama generate", plain); err != plain {
		t.Fatalf("expected untouched error, got %v", err)
	}
	if WrapTemporary("op", nil) != nil {
		t.Fatalf("expected nil")
	}
}
