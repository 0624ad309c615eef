package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultLlamaCppURL   = "http://localhost:8080"
	defaultLlamaCppModel = "llama3"
)

// LlamaCppProvider implements Provider using a llama.cpp server.
type LlamaCppProvider struct {
	parsedURL *url.URL
	model     string
	client    *http.Client
	usage     Usage
}

// NewLlamaCppProvider creates a new llama.cpp provider with the given config.
func NewLlamaCppProvider(baseURL, model string) (*LlamaCppProvider, error) {
	if baseURL == "" {
		baseURL = defaultLlamaCppURL
	}
	if model == "" {
		model = defaultLlamaCppModel
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid llama.cpp URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid llama.cpp URL scheme %q: must be http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid llama.cpp URL: missing host")
	}
	return &LlamaCppProvider{
		parsedURL: parsed,
		model:     model,
		client:    &http.Client{},
	}, nil
}

// Name returns the provider name.
func (p *LlamaCppProvider) Name() string {
	return p.model
}

// GetUsage returns the accumulated API token usage.
func (p *LlamaCppProvider) GetUsage() *Usage {
	return &p.usage
}

// ResetUsage zeroes out the accumulated token usage counters.
func (p *LlamaCppProvider) ResetUsage() {
	p.usage = Usage{}
}

// llamaCppRequest represents a request to the llama.cpp OpenAI-compatible API.
type llamaCppRequest struct {
	Model       string            `json:"model"`
	Messages    []llamaCppMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Stream      bool              `json:"stream"`
}

type llamaCppMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// llamaCppResponse represents a response from the llama.cpp OpenAI-compatible API.
type llamaCppResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateProfile asks the llama.cpp server for a celebrity profile draft.
func (p *LlamaCppProvider) GenerateProfile(ctx context.Context, name string) (*ProfileDraft, error) {
	const maxRetries = 5

	messages := []llamaCppMessage{
		{Role: "system", Content: buildProfilePrompt()},
		{Role: "user", Content: buildProfileRequest(name)},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := p.sendRequest(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("llama.cpp API error: %w", err)
		}

		p.usage.InputTokens += resp.Usage.PromptTokens
		p.usage.OutputTokens += resp.Usage.CompletionTokens

		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from llama.cpp")
		}

		content := resp.Choices[0].Message.Content
		lastResponse = content

		draft, err := parseProfileDraft(extractJSON(content))
		if err != nil {
			lastError = err
			messages = append(messages,
				llamaCppMessage{Role: "assistant", Content: content},
				llamaCppMessage{Role: "user", Content: retryFeedback(err)},
			)
			continue
		}

		return draft, nil
	}

	return nil, fmt.Errorf(
		"failed to parse profile JSON after %d attempts: %w (last response: %s)",
		maxRetries, lastError, lastResponse,
	)
}

func (p *LlamaCppProvider) sendRequest(ctx context.Context, messages []llamaCppMessage) (*llamaCppResponse, error) {
	reqBody := llamaCppRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   700,
		Temperature: 0.1,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := p.parsedURL.JoinPath("/v1/chat/completions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var llamaResp llamaCppResponse
	if err := json.Unmarshal(body, &llamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &llamaResp, nil
}
