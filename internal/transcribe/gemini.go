package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiDefaultModel   = "gemini-2.0-flash"
)

// GeminiClient calls the Generative Language generateContent endpoint with
// the audio inlined in the request.
// Implements the Provider interface.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	prompt  string
	timeout time.Duration
	client  *http.Client
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiPart holds either text or inline data. Responses only ever carry text
// for this use, so InlineData is request-side.
type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// geminiResponse is the subset of a generateContent response we read.
// Every level is optional.
type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

// NewGeminiClient creates a new Gemini transcription client.
// Empty baseURL and model fall back to the public endpoint and gemini-2.0-flash.
func NewGeminiClient(baseURL, apiKey, model, prompt string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	if model == "" {
		model = geminiDefaultModel
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		prompt:  prompt,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (g *GeminiClient) Name() string { return "gemini" }

// Model returns the configured model identifier.
func (g *GeminiClient) Model() string { return g.model }

// Transcribe sends the audio to generateContent and returns the text of the
// first candidate. Exactly one HTTP attempt is made.
func (g *GeminiClient) Transcribe(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(buildGeminiRequest(g.prompt, req))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s:generateContent", g.baseURL, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newUpstreamError(resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, ErrInvalidResponse
	}

	return &Response{Text: result.extractText()}, nil
}

// buildGeminiRequest embeds the prompt and the audio as inline base64 data.
func buildGeminiRequest(prompt string, req Request) geminiRequest {
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return geminiRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(req.Audio),
				}},
			},
		}},
	}
}

// extractText concatenates the text parts of the first candidate.
// A response without candidates, content or parts yields "".
func (r *geminiResponse) extractText() string {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
