package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	elevenLabsDefaultBaseURL = "https://api.elevenlabs.io"
	elevenLabsDefaultModel   = "scribe_v1"
)

// ElevenLabsClient calls the ElevenLabs Speech-to-Text API.
// Implements the Provider interface.
type ElevenLabsClient struct {
	baseURL string
	apiKey  string
	model   string // "scribe_v1" or "scribe_v2"
	client  *http.Client
}

// elevenlabsResponse is the part of the STT response we read.
type elevenlabsResponse struct {
	Text string `json:"text"`
}

// NewElevenLabsClient creates a new ElevenLabs STT client.
func NewElevenLabsClient(baseURL, apiKey, model string, timeout time.Duration) *ElevenLabsClient {
	if baseURL == "" {
		baseURL = elevenLabsDefaultBaseURL
	}
	if model == "" {
		model = elevenLabsDefaultModel
	}
	return &ElevenLabsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (el *ElevenLabsClient) Name() string { return "elevenlabs" }

// Model returns the configured model identifier.
func (el *ElevenLabsClient) Model() string { return el.model }

// Transcribe uploads the clip as multipart form data and returns the text.
func (el *ElevenLabsClient) Transcribe(ctx context.Context, req Request) (*Response, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fileName := req.FileName
	if fileName == "" {
		fileName = FileNameForMime(req.MimeType)
	}

	// CreateFormFile would force application/octet-stream.
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", req.MimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	w.WriteField("model_id", el.model)
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, el.baseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("xi-api-key", el.apiKey)

	resp, err := el.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newUpstreamError(resp.StatusCode, string(body))
	}

	var result elevenlabsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, ErrInvalidResponse
	}
	return &Response{Text: result.Text}, nil
}
