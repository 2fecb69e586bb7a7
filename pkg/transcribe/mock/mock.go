// Package mock provides a test double for the transcribe package.
package mock

import (
	"context"
	"sync"

	"github.com/arvindram27/memex-agent/pkg/transcribe"
)

// Transcriber is a mock implementation of transcribe.Transcriber.
type Transcriber struct {
	mu sync.Mutex

	// Text is returned from Transcribe.
	Text string

	// TranscribeErr, if non-nil, is returned as the error from Transcribe.
	TranscribeErr error

	// Calls records the sample counts of every Transcribe invocation.
	Calls []int
}

// Transcribe records the call and returns Text, TranscribeErr.
func (t *Transcriber) Transcribe(_ context.Context, samples []float32) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = append(t.Calls, len(samples))
	if t.TranscribeErr != nil {
		return "", t.TranscribeErr
	}
	return t.Text, nil
}

var _ transcribe.Transcriber = (*Transcriber)(nil)
