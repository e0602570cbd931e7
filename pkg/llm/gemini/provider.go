package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fitai-planner-be/pkg/llm"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiPart struct {
	Text string `json:"text,omitempty"`
	// Non-text parts (function calls, inline data) decode into these and are ignored.
	FunctionCall json.RawMessage `json:"functionCall,omitempty"`
	InlineData   json.RawMessage `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Parts []*geminiPart `json:"parts"`
	Role  string        `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	Contents          []*geminiContent  `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []*geminiCandidate `json:"candidates"`
}

const (
	roleUser  = "user"
	roleModel = "model"
)

type Provider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &Provider{}

func NewProvider(apiKey, model string) *Provider {
	return &Provider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   model,
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

// WithBaseURL points the provider at another endpoint (used by tests).
func (p *Provider) WithBaseURL(url string) *Provider {
	p.baseURL = url
	return p
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{Model: p.model}
	for _, o := range options {
		o(opts)
	}

	payload := geminiRequest{Contents: make([]*geminiContent, 0, len(history))}
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			// Gemini takes system text out of band.
			payload.SystemInstruction = &geminiContent{Parts: []*geminiPart{{Text: msg.Content}}}
		case llm.RoleAssistant, roleModel:
			payload.Contents = append(payload.Contents, &geminiContent{Parts: []*geminiPart{{Text: msg.Content}}, Role: roleModel})
		default:
			payload.Contents = append(payload.Contents, &geminiContent{Parts: []*geminiPart{{Text: msg.Content}}, Role: roleUser})
		}
	}
	if opts.Temperature > 0 || opts.MaxTokens > 0 {
		payload.GenerationConfig = &generationConfig{Temperature: opts.Temperature, MaxOutputTokens: opts.MaxTokens}
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", &llm.ProviderError{Provider: "gemini", Status: res.StatusCode, Body: string(resBody)}
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil {
		return "", llm.ErrEmptyResponse
	}

	parts := make([]llm.Part, 0, len(geminiRes.Candidates[0].Content.Parts))
	for _, part := range geminiRes.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text == "" {
			parts = append(parts, llm.Part{Type: "other"})
			continue
		}
		parts = append(parts, llm.Part{Type: "text", Text: part.Text})
	}

	return llm.FlattenContent(parts), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
