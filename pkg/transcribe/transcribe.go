// Package transcribe defines the Transcriber contract for speech-to-text
// backends used by memex-agent.
//
// Unlike streaming assistants, command transcription here is batch-shaped:
// the device shell records one utterance, ships the PCM samples, and the
// pipeline needs exactly one authoritative text for it. A Transcriber takes
// a complete utterance and returns its transcript; an empty transcript means
// the audio was unintelligible and is surfaced to the caller as a
// could-not-understand failure before the classifier ever runs.
//
// Implementations must be safe for concurrent use.
package transcribe

import "context"

// DefaultSampleRate is the sample rate command audio is expected in (Hz).
// Whisper models are trained on 16 kHz mono audio.
const DefaultSampleRate = 16000

// Transcriber converts one complete utterance into text.
type Transcriber interface {
	// Transcribe runs speech recognition over samples, a complete utterance
	// of mono float32 PCM in [-1, 1] at [DefaultSampleRate].
	//
	// An empty string with a nil error means the audio contained no
	// recognisable speech. A non-nil error indicates the backend itself
	// failed (model crash, context cancelled).
	Transcribe(ctx context.Context, samples []float32) (string, error)
}
