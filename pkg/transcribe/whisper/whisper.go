// Package whisper provides a local whisper.cpp-backed Transcriber using the
// CGO bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH environment variables.
//
// The ggml model (e.g. ggml-tiny.bin) is loaded once at construction and
// shared across all transcriptions; each Transcribe call creates its own
// whisper context, so concurrent calls do not interfere.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/arvindram27/memex-agent/pkg/transcribe"
)

const defaultLanguage = "en"

// Compile-time assertion that Transcriber implements transcribe.Transcriber.
var _ transcribe.Transcriber = (*Transcriber)(nil)

// Option is a functional option for configuring a Transcriber.
type Option func(*Transcriber)

// WithLanguage sets the BCP-47 language code for recognition (e.g. "en",
// "de", "fr"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(t *Transcriber) { t.language = lang }
}

// WithTranslate makes whisper translate recognised speech to English.
// Off by default.
func WithTranslate(enabled bool) Option {
	return func(t *Transcriber) { t.translate = enabled }
}

// Transcriber implements transcribe.Transcriber backed by an in-process
// whisper.cpp model.
type Transcriber struct {
	language  string
	translate bool

	mu     sync.Mutex
	model  whisperlib.Model
	closed bool
}

// New creates a Transcriber that loads the whisper.cpp model from modelPath.
// The caller must call Close when the transcriber is no longer needed.
func New(modelPath string, opts ...Option) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	t := &Transcriber{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Close releases the whisper model. Calling Close more than once is safe.
func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.model.Close()
}

// Transcribe runs batch inference over a complete utterance of 16 kHz mono
// float32 PCM and returns the concatenated segment text.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", nil
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return "", errors.New("whisper: transcriber is closed")
	}
	model := t.model
	t.mu.Unlock()

	// Each whisper context is single-use and not thread-safe; the model
	// itself may be shared across goroutines.
	wctx, err := model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}
	if err := wctx.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("whisper: set language %q: %w", t.language, err)
	}
	wctx.SetTranslate(t.translate)

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), nil
}
