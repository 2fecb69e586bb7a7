package resilience

import (
	"context"
	"errors"
	"testing"

	transcribemock "github.com/arvindram27/memex-agent/pkg/transcribe/mock"
)

func TestTranscriberFallback_PrimarySuccess(t *testing.T) {
	primary := &transcribemock.Transcriber{Text: "click checkout"}
	secondary := &transcribemock.Transcriber{Text: "wrong backend"}

	fb := NewTranscriberFallback(primary, "whisper", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("remote", secondary)

	text, err := fb.Transcribe(context.Background(), []float32{0.1, 0.2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "click checkout" {
		t.Errorf("text = %q, want %q", text, "click checkout")
	}
	if len(primary.Calls) != 1 {
		t.Errorf("primary called %d times, want 1", len(primary.Calls))
	}
	if len(secondary.Calls) != 0 {
		t.Errorf("secondary called %d times, want 0", len(secondary.Calls))
	}
}

func TestTranscriberFallback_Failover(t *testing.T) {
	primary := &transcribemock.Transcriber{TranscribeErr: errors.New("model not loaded")}
	secondary := &transcribemock.Transcriber{Text: "scroll down"}

	fb := NewTranscriberFallback(primary, "whisper", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("remote", secondary)

	text, err := fb.Transcribe(context.Background(), []float32{0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "scroll down" {
		t.Errorf("text = %q, want %q", text, "scroll down")
	}
	if len(secondary.Calls) != 1 {
		t.Errorf("secondary called %d times, want 1", len(secondary.Calls))
	}
}

func TestTranscriberFallback_AllFail(t *testing.T) {
	primary := &transcribemock.Transcriber{TranscribeErr: errors.New("primary down")}
	secondary := &transcribemock.Transcriber{TranscribeErr: errors.New("secondary down")}

	fb := NewTranscriberFallback(primary, "whisper", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("remote", secondary)

	_, err := fb.Transcribe(context.Background(), []float32{0.1})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
