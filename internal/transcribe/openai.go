package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint.
// Implements the Provider interface.
type OpenAIClient struct {
	client *openai.Client
	model  string
	prompt string
}

// NewOpenAIClient creates a new OpenAI transcription client. An empty baseURL
// uses the public API; model defaults to whisper-1.
func NewOpenAIClient(baseURL, apiKey, model, prompt string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		prompt: prompt,
	}
}

// Name returns the provider name.
func (o *OpenAIClient) Name() string { return "openai" }

// Model returns the configured model identifier.
func (o *OpenAIClient) Model() string { return o.model }

// Transcribe uploads the audio as a multipart file and returns the text.
// The Gemini-style instruction is not meaningful to Whisper, so the prompt is
// only forwarded when it was changed from the default.
func (o *OpenAIClient) Transcribe(ctx context.Context, req Request) (*Response, error) {
	fileName := req.FileName
	if fileName == "" {
		fileName = FileNameForMime(req.MimeType)
	}

	audioReq := openai.AudioRequest{
		Model:    o.model,
		FilePath: fileName,
		Reader:   bytes.NewReader(req.Audio),
		Format:   openai.AudioResponseFormatJSON,
	}
	if o.prompt != DefaultPrompt {
		audioReq.Prompt = o.prompt
	}

	resp, err := o.client.CreateTranscription(ctx, audioReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, newUpstreamError(apiErr.HTTPStatusCode, apiErr.Message)
		}
		// Error bodies that are not OpenAI's JSON shape come back raw.
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
			return nil, newUpstreamError(reqErr.HTTPStatusCode, string(reqErr.Body))
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return nil, ErrInvalidResponse
		}
		return nil, fmt.Errorf("openai request: %w", err)
	}

	return &Response{Text: resp.Text}, nil
}
