package transcribe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPrompt is the instruction sent alongside the audio.
const DefaultPrompt = "Transcribe the following audio."

// fallbackMessage is used when the upstream fails without saying why.
const fallbackMessage = "Transcription failed."

// ErrInvalidResponse means the upstream answered 2xx with a body that is not JSON.
var ErrInvalidResponse = errors.New("Invalid response from transcription service.")

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req Request) (*Response, error)
	Name() string  // "gemini", "openai", "elevenlabs"
	Model() string // model identifier for logs and health
}

// Request carries one decoded audio clip to the upstream.
type Request struct {
	Audio    []byte
	MimeType string
	FileName string
}

// Response is the common transcription result from any provider.
// Text may be empty: no speech detected or the provider returned nothing.
type Response struct {
	Text string
}

// UpstreamError is a non-2xx answer from the provider. Message is the
// provider's own error text and is safe to pass through to the caller.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func newUpstreamError(status int, body string) *UpstreamError {
	if body == "" {
		body = fallbackMessage
	}
	return &UpstreamError{StatusCode: status, Message: body}
}

// Options configures the active provider.
type Options struct {
	Provider string // "gemini", "openai" or "elevenlabs"
	APIKey   string
	Model    string
	BaseURL  string
	Prompt   string
	Timeout  time.Duration
}

// NewProvider builds the single provider selected by opts.Provider.
func NewProvider(opts Options) (Provider, error) {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	switch opts.Provider {
	case "gemini":
		return NewGeminiClient(opts.BaseURL, opts.APIKey, opts.Model, opts.Prompt, opts.Timeout), nil
	case "openai":
		return NewOpenAIClient(opts.BaseURL, opts.APIKey, opts.Model, opts.Prompt, opts.Timeout), nil
	case "elevenlabs":
		// Scribe takes no instruction text.
		return NewElevenLabsClient(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", opts.Provider)
	}
}
